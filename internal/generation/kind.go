package generation

import "fmt"

// Kind identifies a generation request. It decides which prompt template and
// which response schema apply.
type Kind string

// Supported generation kinds
const (
	KindChatReply       Kind = "chat_reply"
	KindExercise        Kind = "exercise"
	KindVocabularyWord  Kind = "vocabulary_word"
	KindQuizQuestionSet Kind = "quiz_question_set"
	KindWordSuggestions Kind = "word_suggestions"
	KindWordExplanation Kind = "word_explanation"
)

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindChatReply,
		KindExercise,
		KindVocabularyWord,
		KindQuizQuestionSet,
		KindWordSuggestions,
		KindWordExplanation,
	}
}

// Validate returns ErrConfiguration for a kind outside the supported set.
func (k Kind) Validate() error {
	for _, known := range Kinds() {
		if k == known {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown request kind %q", ErrConfiguration, string(k))
}

func (k Kind) String() string {
	return string(k)
}
