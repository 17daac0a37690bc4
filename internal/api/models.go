package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/ratelimit"
	"github.com/phrazzld/bhasha-api/internal/session"
)

// Common request/response structures

// SessionResponse is returned by the session endpoints.
type SessionResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	Profile   session.Profile `json:"profile"`
}

// ChatRequest is a learner message sent to the tutor.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ChatResponse holds both turns appended by a chat exchange.
type ChatResponse struct {
	UserTurn generation.ChatTurn `json:"userTurn"`
	Reply    generation.ChatTurn `json:"reply"`
	Fallback bool                `json:"fallback,omitempty"`
}

// ChatHistoryResponse lists a session's chat turns, oldest first.
type ChatHistoryResponse struct {
	Messages []generation.ChatTurn `json:"messages"`
}

// LessonsResponse lists the catalog with the learner's progress.
type LessonsResponse struct {
	Lessons []session.LessonStatus `json:"lessons"`
}

// ExerciseResponse is an exercise as shown to the learner. The correct
// answer stays on the server until the answers are graded.
type ExerciseResponse struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// LessonExercisesResponse is returned when a lesson is started.
type LessonExercisesResponse struct {
	Lesson    session.Lesson     `json:"lesson"`
	Exercises []ExerciseResponse `json:"exercises"`
	// Fallback is set when the built-in exercises were served because
	// generation failed.
	Fallback bool `json:"fallback,omitempty"`
}

// SubmitAnswersRequest maps exercise IDs to the chosen option.
type SubmitAnswersRequest struct {
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}

// SubmitAnswersResponse carries the graded result and updated progress.
type SubmitAnswersResponse struct {
	Result  *session.LessonResult  `json:"result"`
	Lessons []session.LessonStatus `json:"lessons"`
}

// VocabularyWordRequest asks for a single vocabulary word. Level defaults to
// the learner's profile level.
type VocabularyWordRequest struct {
	Level    string `json:"level"`
	Category string `json:"category"`
}

// QuizRequest asks for a set of quiz questions. Count defaults to 5.
type QuizRequest struct {
	Level    string `json:"level"`
	Category string `json:"category"`
	Count    int    `json:"count" validate:"gte=0,lte=20"`
}

// QuizResponse wraps a generated quiz.
type QuizResponse struct {
	Questions []generation.QuizQuestion `json:"questions"`
}

// SuggestionsResponse wraps word suggestions.
type SuggestionsResponse struct {
	Suggestions []generation.WordSuggestion `json:"suggestions"`
}

// HealthResponse reports liveness and shared resource usage.
type HealthResponse struct {
	Status    string          `json:"status"`
	RateLimit ratelimit.Stats `json:"rate_limit"`
	Sessions  int             `json:"sessions"`
}

func toExerciseResponses(exercises []generation.Exercise) []ExerciseResponse {
	out := make([]ExerciseResponse, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, ExerciseResponse{ID: ex.ID, Question: ex.Question, Options: ex.Options})
	}
	return out
}
