package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/ratelimit"
	"github.com/phrazzld/bhasha-api/internal/session"
)

// Generator is the generation gateway as seen by the handlers.
type Generator interface {
	ChatResponse(ctx context.Context, message, language, level string) (string, error)
	GenerateExercise(ctx context.Context, language, level, lessonType string) (*generation.Exercise, error)
	GenerateVocabularyWord(ctx context.Context, level, category string) (*generation.VocabularyWord, error)
	GenerateQuizQuestions(ctx context.Context, level, category string, count int) ([]generation.QuizQuestion, error)
	WordSuggestions(ctx context.Context, input, level string) ([]generation.WordSuggestion, error)
	WordExplanation(ctx context.Context, word string) (*generation.WordExplanation, error)
}

// SessionStore holds learner sessions, chat history and lesson progress.
type SessionStore interface {
	Create(profile session.Profile) (session.Session, error)
	Get(id uuid.UUID) (session.Session, error)
	UpdateProfile(id uuid.UUID, profile session.Profile) (session.Session, error)
	AppendTurn(id uuid.UUID, role generation.Role, content string) (generation.ChatTurn, error)
	History(id uuid.UUID) ([]generation.ChatTurn, error)
	Lessons(id uuid.UUID) ([]session.LessonStatus, error)
	StartLesson(id uuid.UUID, lessonID string) (session.Lesson, error)
	IssueExercises(id uuid.UUID, lessonID string, exercises []generation.Exercise) error
	SubmitAnswers(id uuid.UUID, lessonID string, answers map[string]string) (*session.LessonResult, error)
	Len() int
}

// LimiterStats reports rate limiter usage.
type LimiterStats interface {
	Stats() ratelimit.Stats
}
