package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/platform/logger"
	"github.com/phrazzld/bhasha-api/internal/session"
)

// errMissingSession means a protected handler ran without the session
// middleware in front of it.
var errMissingSession = errors.New("session ID missing from request context")

// getSessionFromContext loads the session resolved by the session middleware.
// It writes an error response and returns false if that fails.
func getSessionFromContext(
	w http.ResponseWriter,
	r *http.Request,
	sessions SessionStore,
) (uuid.UUID, session.Session, bool) {
	id, ok := shared.GetSessionID(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context()).Error("session ID not found in request context")
		HandleAPIError(w, r, errMissingSession, "")
		return uuid.Nil, session.Session{}, false
	}

	sess, err := sessions.Get(id)
	if err != nil {
		logger.FromContextOrDefault(r.Context()).Debug("session lookup failed",
			slog.String("session_id", id.String()))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, session.Session{}, false
	}

	return id, sess, true
}

// decodeAndValidate decodes the JSON body into v and validates it. It writes
// an error response and returns false if either step fails.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// orDefault returns value unless it is empty.
func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
