package api

import (
	"net/http"

	"github.com/phrazzld/bhasha-api/internal/api/shared"
)

// VocabularyHandler handles vocabulary practice requests. Missing levels
// default to the learner's profile level; the gateway rejects any other
// missing parameter.
type VocabularyHandler struct {
	sessions  SessionStore
	generator Generator
}

// NewVocabularyHandler creates a new VocabularyHandler.
func NewVocabularyHandler(sessions SessionStore, generator Generator) *VocabularyHandler {
	return &VocabularyHandler{sessions: sessions, generator: generator}
}

// GenerateWord handles POST /api/vocabulary/word requests.
func (h *VocabularyHandler) GenerateWord(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	var req VocabularyWordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	word, err := h.generator.GenerateVocabularyWord(r.Context(),
		orDefault(req.Level, sess.Profile.Level), req.Category)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, word)
}

// GenerateQuiz handles POST /api/vocabulary/quiz requests.
func (h *VocabularyHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	var req QuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	questions, err := h.generator.GenerateQuizQuestions(r.Context(),
		orDefault(req.Level, sess.Profile.Level), req.Category, req.Count)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QuizResponse{Questions: questions})
}

// Suggestions handles GET /api/vocabulary/suggestions?input=&level= requests.
func (h *VocabularyHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	query := r.URL.Query()
	suggestions, err := h.generator.WordSuggestions(r.Context(),
		query.Get("input"), orDefault(query.Get("level"), sess.Profile.Level))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// Explanation handles GET /api/vocabulary/explanation?word= requests.
func (h *VocabularyHandler) Explanation(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := getSessionFromContext(w, r, h.sessions); !ok {
		return
	}

	explanation, err := h.generator.WordExplanation(r.Context(), r.URL.Query().Get("word"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, explanation)
}
