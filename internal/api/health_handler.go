package api

import (
	"net/http"

	"github.com/phrazzld/bhasha-api/internal/api/shared"
)

// HealthHandler reports liveness and shared resource usage.
type HealthHandler struct {
	limiter  LimiterStats
	sessions SessionStore
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(limiter LimiterStats, sessions SessionStore) *HealthHandler {
	return &HealthHandler{limiter: limiter, sessions: sessions}
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		RateLimit: h.limiter.Stats(),
		Sessions:  h.sessions.Len(),
	})
}
