package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/generation"
)

// fallbackExercises are served when lesson exercises cannot be generated.
var fallbackExercises = []generation.Exercise{
	{
		Question:      `What is the meaning of "नमस्ते"?`,
		Options:       []string{"Good morning", "Hello/Namaste", "How are you?", "Goodbye"},
		CorrectAnswer: "Hello/Namaste",
	},
	{
		Question:      `How do you say "Good morning" in Hindi?`,
		Options:       []string{"आप कैसे हैं?", "नमस्ते", "शुभ प्रभात", "मैं ठीक हूं"},
		CorrectAnswer: "शुभ प्रभात",
	},
}

// newFallbackExercises returns a copy of the built-in exercises with fresh
// IDs so answers to an earlier set cannot be replayed.
func newFallbackExercises() []generation.Exercise {
	out := make([]generation.Exercise, 0, len(fallbackExercises))
	for _, ex := range fallbackExercises {
		ex.ID = uuid.NewString()
		ex.Options = append([]string(nil), ex.Options...)
		out = append(out, ex)
	}
	return out
}
