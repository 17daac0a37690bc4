package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/platform/logger"
	"github.com/phrazzld/bhasha-api/internal/redact"
	"github.com/phrazzld/bhasha-api/internal/session"
)

// SessionHeader carries the session ID returned by POST /api/sessions.
const SessionHeader = "X-Session-Id"

// SessionLookup is the part of the session store the middleware needs.
type SessionLookup interface {
	Get(id uuid.UUID) (session.Session, error)
}

// SessionMiddleware resolves the learner's session for protected routes.
type SessionMiddleware struct {
	sessions SessionLookup
}

// NewSessionMiddleware creates a new SessionMiddleware with the given store.
func NewSessionMiddleware(sessions SessionLookup) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
	}
}

// RequireSession validates the session header and adds the session ID to
// the request context. Unknown or expired sessions get a 404.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(SessionHeader))
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusBadRequest, SessionHeader+" header required")
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
			return
		}

		if _, err := m.sessions.Get(id); err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
				return
			}
			logger.FromContextOrDefault(r.Context()).Error("failed to look up session",
				slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Session lookup failed")
			return
		}

		ctx := shared.WithSessionID(r.Context(), id)
		log := logger.FromContextOrDefault(ctx).With(slog.String("session_id", id.String()))
		ctx = logger.WithContext(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
