package api

import (
	"net/http"

	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/session"
)

// SessionHandler handles onboarding and profile requests.
type SessionHandler struct {
	sessions SessionStore
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession handles POST /api/sessions requests. The profile is
// validated by the store after its free-text fields are trimmed.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var profile session.Profile
	if err := shared.DecodeJSON(w, r, &profile); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sess, err := h.sessions.Create(profile)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Profile:   sess.Profile,
	})
}

// GetSession handles GET /api/sessions/me requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		SessionID: sess.ID,
		Profile:   sess.Profile,
	})
}

// UpdateProfile handles PUT /api/sessions/me/profile requests.
func (h *SessionHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _, ok := getSessionFromContext(w, r, h.sessions)
	if !ok {
		return
	}

	var profile session.Profile
	if err := shared.DecodeJSON(w, r, &profile); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sess, err := h.sessions.UpdateProfile(id, profile)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		SessionID: sess.ID,
		Profile:   sess.Profile,
	})
}
