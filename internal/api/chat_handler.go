package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/platform/logger"
	"github.com/phrazzld/bhasha-api/internal/redact"
)

// ChatApology is stored as the tutor's reply when generation fails.
const ChatApology = "Sorry, I encountered an error. Please try again."

// ChatHandler handles conversation practice requests.
type ChatHandler struct {
	sessions  SessionStore
	generator Generator
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(sessions SessionStore, generator Generator) *ChatHandler {
	return &ChatHandler{sessions: sessions, generator: generator}
}

// SendMessage handles POST /api/chat requests. The learner's turn is always
// recorded. If the tutor cannot answer, an apology turn is recorded in its
// place and the response is flagged as a fallback.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	var req ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userTurn, err := h.sessions.AppendTurn(id, generation.RoleUser, req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	fallback := false
	reply, err := h.generator.ChatResponse(r.Context(), userTurn.Content,
		sess.Profile.TargetLanguage, sess.Profile.Level)
	if err != nil {
		if MapErrorToStatusCode(err) != http.StatusBadGateway {
			HandleAPIError(w, r, err, "")
			return
		}
		logger.FromContextOrDefault(r.Context()).Warn("chat reply generation failed, sending apology",
			slog.String("error", redact.Error(err)))
		reply, fallback = ChatApology, true
	}

	replyTurn, err := h.sessions.AppendTurn(id, generation.RoleAssistant, reply)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ChatResponse{
		UserTurn: userTurn,
		Reply:    replyTurn,
		Fallback: fallback,
	})
}

// GetHistory handles GET /api/chat requests.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, _, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	history, err := h.sessions.History(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ChatHistoryResponse{Messages: history})
}
