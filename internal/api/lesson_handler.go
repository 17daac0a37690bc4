package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/platform/logger"
	"github.com/phrazzld/bhasha-api/internal/redact"
)

// ExercisesPerLesson is how many exercises are generated when a lesson starts.
const ExercisesPerLesson = 2

// LessonHandler handles the lesson catalog and lesson progression.
type LessonHandler struct {
	sessions  SessionStore
	generator Generator
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(sessions SessionStore, generator Generator) *LessonHandler {
	return &LessonHandler{sessions: sessions, generator: generator}
}

// ListLessons handles GET /api/lessons requests.
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	id, _, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	lessons, err := h.sessions.Lessons(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LessonsResponse{Lessons: lessons})
}

// StartLesson handles POST /api/lessons/{id}/exercises requests. Exercises
// are generated for the lesson's type in the learner's language and level.
// When generation fails the built-in exercises are issued instead.
func (h *LessonHandler) StartLesson(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}
	log := logger.FromContextOrDefault(r.Context())

	lessonID := chi.URLParam(r, "id")
	lesson, err := h.sessions.StartLesson(id, lessonID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	exercises := make([]generation.Exercise, 0, ExercisesPerLesson)
	fallback := false
	for i := 0; i < ExercisesPerLesson; i++ {
		exercise, err := h.generator.GenerateExercise(r.Context(),
			sess.Profile.TargetLanguage, sess.Profile.Level, string(lesson.Type))
		if err != nil {
			if MapErrorToStatusCode(err) != http.StatusBadGateway {
				HandleAPIError(w, r, err, "")
				return
			}
			log.Warn("exercise generation failed, serving built-in exercises",
				slog.String("lesson_id", lesson.ID),
				slog.String("error", redact.Error(err)))
			exercises, fallback = newFallbackExercises(), true
			break
		}
		exercises = append(exercises, *exercise)
	}

	if err := h.sessions.IssueExercises(id, lesson.ID, exercises); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LessonExercisesResponse{
		Lesson:    lesson,
		Exercises: toExerciseResponses(exercises),
		Fallback:  fallback,
	})
}

// SubmitAnswers handles POST /api/lessons/{id}/answers requests.
func (h *LessonHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	id, _, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	var req SubmitAnswersRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.sessions.SubmitAnswers(id, chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	lessons, err := h.sessions.Lessons(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if result.Completed {
		logger.FromContextOrDefault(r.Context()).Info("lesson completed",
			slog.String("lesson_id", result.LessonID))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitAnswersResponse{Result: result, Lessons: lessons})
}
