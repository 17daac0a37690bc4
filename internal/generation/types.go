package generation

import "time"

// VocabularyWord is a single Hindi vocabulary entry. Every field is required.
type VocabularyWord struct {
	Word            string `json:"word"`
	Transliteration string `json:"transliteration"`
	EnglishMeaning  string `json:"englishMeaning"`
	HindiExample    string `json:"hindiExample"`
	EnglishExample  string `json:"englishExample"`
	Level           string `json:"level"`
	Category        string `json:"category"`
}

// QuizQuestion is one multiple-choice vocabulary question. IncorrectOptions
// always holds exactly three entries, none equal to CorrectAnswer.
type QuizQuestion struct {
	Word             string   `json:"word"`
	Transliteration  string   `json:"transliteration"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectOptions []string `json:"incorrectOptions"`
}

// QuizOptionCount is the number of distractors a quiz question carries.
const QuizOptionCount = 3

// Exercise is a multiple-choice lesson exercise. ID is assigned by the
// caller; CorrectAnswer is always one of Options.
type Exercise struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// ExerciseOptionCount is the number of options an exercise offers.
const ExerciseOptionCount = 4

// WordSuggestion is a short vocabulary hint returned for partial input.
type WordSuggestion struct {
	Word            string `json:"word"`
	Transliteration string `json:"transliteration"`
	EnglishMeaning  string `json:"englishMeaning"`
}

// WordExplanation is a free-form explanation of a word. Sections holds the
// model's organised sections (etymology, usage, related words, ...).
type WordExplanation struct {
	Word     string         `json:"word"`
	Sections map[string]any `json:"sections"`
}

// Role is the author of a chat turn.
type Role string

// Chat roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in a practice conversation. Timestamps never
// decrease within a session.
type ChatTurn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
