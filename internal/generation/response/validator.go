package response

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/bhasha-api/internal/generation"
)

// field is a required schema field. List fields hold arrays; every other
// field must be a non-empty string.
type field struct {
	name string
	list bool
}

// Required fields, in the order they are reported when missing.
var (
	vocabularyFields = []field{
		{name: "word"}, {name: "transliteration"}, {name: "englishMeaning"}, {name: "hindiExample"},
		{name: "englishExample"}, {name: "level"}, {name: "category"},
	}
	quizFields = []field{
		{name: "word"}, {name: "transliteration"}, {name: "correctAnswer"}, {name: "incorrectOptions", list: true},
	}
	exerciseFields   = []field{{name: "question"}, {name: "options", list: true}, {name: "correctAnswer"}}
	suggestionFields = []field{{name: "word"}, {name: "transliteration"}, {name: "englishMeaning"}}
)

// Validate dispatches on kind and returns the typed value for it:
// string, *generation.Exercise, *generation.VocabularyWord,
// []generation.QuizQuestion, []generation.WordSuggestion or
// *generation.WordExplanation.
func Validate(kind generation.Kind, raw string) (any, error) {
	switch kind {
	case generation.KindChatReply:
		return ChatReply(raw)
	case generation.KindExercise:
		return Exercise(raw)
	case generation.KindVocabularyWord:
		return VocabularyWord(raw)
	case generation.KindQuizQuestionSet:
		return QuizQuestions(raw)
	case generation.KindWordSuggestions:
		return WordSuggestions(raw)
	case generation.KindWordExplanation:
		return WordExplanation(raw, "")
	default:
		return nil, kind.Validate()
	}
}

// ChatReply accepts any non-empty text.
func ChatReply(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: empty chat reply", generation.ErrResponseFormat)
	}
	return text, nil
}

// VocabularyWord parses a single vocabulary object with all seven fields.
func VocabularyWord(raw string) (*generation.VocabularyWord, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	if missing := missingFields(obj, vocabularyFields); len(missing) > 0 {
		return nil, &generation.MissingFieldsError{Fields: missing}
	}

	return &generation.VocabularyWord{
		Word:            stringField(obj, "word"),
		Transliteration: stringField(obj, "transliteration"),
		EnglishMeaning:  stringField(obj, "englishMeaning"),
		HindiExample:    stringField(obj, "hindiExample"),
		EnglishExample:  stringField(obj, "englishExample"),
		Level:           stringField(obj, "level"),
		Category:        stringField(obj, "category"),
	}, nil
}

// QuizQuestions parses an array of quiz questions, preserving order.
func QuizQuestions(raw string) ([]generation.QuizQuestion, error) {
	elements, err := parseArray(raw)
	if err != nil {
		return nil, err
	}

	questions := make([]generation.QuizQuestion, 0, len(elements))
	for i, element := range elements {
		index := i + 1

		obj, ok := element.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d: %w", index,
				&generation.ShapeMismatchError{Expected: "object", Got: jsonKind(element)})
		}

		if missing := missingFields(obj, quizFields); len(missing) > 0 {
			return nil, &generation.MissingFieldsError{Index: index, Fields: missing}
		}

		correct := stringField(obj, "correctAnswer")
		options, reason := stringList(obj["incorrectOptions"])
		if reason == "" && len(options) != generation.QuizOptionCount {
			reason = fmt.Sprintf("expected %d incorrect options, got %d", generation.QuizOptionCount, len(options))
		}
		if reason == "" {
			for _, option := range options {
				if option == correct {
					reason = "incorrect option equals the correct answer"
					break
				}
			}
		}
		if reason != "" {
			return nil, &generation.InvalidOptionsError{Index: index, Reason: reason}
		}

		questions = append(questions, generation.QuizQuestion{
			Word:             stringField(obj, "word"),
			Transliteration:  stringField(obj, "transliteration"),
			CorrectAnswer:    correct,
			IncorrectOptions: options,
		})
	}

	return questions, nil
}

// Exercise parses a single multiple-choice exercise. The ID is left empty
// for the caller to assign.
func Exercise(raw string) (*generation.Exercise, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	if missing := missingFields(obj, exerciseFields); len(missing) > 0 {
		return nil, &generation.MissingFieldsError{Fields: missing}
	}

	correct := stringField(obj, "correctAnswer")
	options, reason := stringList(obj["options"])
	if reason == "" && len(options) != generation.ExerciseOptionCount {
		reason = fmt.Sprintf("expected %d options, got %d", generation.ExerciseOptionCount, len(options))
	}
	if reason == "" && !contains(options, correct) {
		reason = "correct answer is not one of the options"
	}
	if reason != "" {
		return nil, &generation.InvalidOptionsError{Reason: reason}
	}

	return &generation.Exercise{
		Question:      stringField(obj, "question"),
		Options:       options,
		CorrectAnswer: correct,
	}, nil
}

// WordSuggestions parses an array of suggestion objects.
func WordSuggestions(raw string) ([]generation.WordSuggestion, error) {
	elements, err := parseArray(raw)
	if err != nil {
		return nil, err
	}

	suggestions := make([]generation.WordSuggestion, 0, len(elements))
	for i, element := range elements {
		index := i + 1

		obj, ok := element.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d: %w", index,
				&generation.ShapeMismatchError{Expected: "object", Got: jsonKind(element)})
		}

		if missing := missingFields(obj, suggestionFields); len(missing) > 0 {
			return nil, &generation.MissingFieldsError{Index: index, Fields: missing}
		}

		suggestions = append(suggestions, generation.WordSuggestion{
			Word:            stringField(obj, "word"),
			Transliteration: stringField(obj, "transliteration"),
			EnglishMeaning:  stringField(obj, "englishMeaning"),
		})
	}

	return suggestions, nil
}

// WordExplanation parses a free-form explanation object. It must be a
// non-empty JSON object; its sections are returned untouched.
func WordExplanation(raw string, word string) (*generation.WordExplanation, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	if len(obj) == 0 {
		return nil, &generation.MissingFieldsError{Fields: []string{"sections"}}
	}

	return &generation.WordExplanation{Word: word, Sections: obj}, nil
}

func parse(raw string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(StripFences(raw)), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrResponseFormat, err)
	}
	return value, nil
}

func parseObject(raw string) (map[string]any, error) {
	value, err := parse(raw)
	if err != nil {
		return nil, err
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &generation.ShapeMismatchError{Expected: "object", Got: jsonKind(value)}
	}
	return obj, nil
}

func parseArray(raw string) ([]any, error) {
	value, err := parse(raw)
	if err != nil {
		return nil, err
	}

	elements, ok := value.([]any)
	if !ok {
		return nil, &generation.ShapeMismatchError{Expected: "array", Got: jsonKind(value)}
	}
	return elements, nil
}

// missingFields lists fields that are absent, null, empty lists, or, for
// string fields, anything but a non-blank string. A list field holding a
// non-array value counts as present and is rejected later as invalid options.
func missingFields(obj map[string]any, fields []field) []string {
	var missing []string
	for _, f := range fields {
		value, ok := obj[f.name]
		if !ok || value == nil {
			missing = append(missing, f.name)
			continue
		}

		if f.list {
			if items, isList := value.([]any); isList && len(items) == 0 {
				missing = append(missing, f.name)
			}
			continue
		}

		if s, isString := value.(string); !isString || strings.TrimSpace(s) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func stringField(obj map[string]any, field string) string {
	s, _ := obj[field].(string)
	return s
}

// stringList converts a JSON array of strings. A non-empty reason means the
// value was not an array of strings.
func stringList(value any) ([]string, string) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Sprintf("expected an array, got %s", jsonKind(value))
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Sprintf("option %d is %s, not a string", i+1, jsonKind(item))
		}
		out = append(out, s)
	}
	return out, ""
}

func contains(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
