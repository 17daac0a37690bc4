package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	log := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTraceID string
	var handlerLoggerFound bool
	handler := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		_, handlerLoggerFound = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	r = r.WithContext(logger.WithContext(r.Context(), log))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	require.NotEmpty(t, seenTraceID)
	assert.True(t, handlerLoggerFound)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, seenTraceID, entries[0]["trace_id"])

	assert.Equal(t, "request completed", entries[1]["msg"])
	assert.Equal(t, seenTraceID, entries[1]["trace_id"])
	assert.EqualValues(t, http.StatusTeapot, entries[1]["status"])
	assert.Equal(t, "/api/lessons", entries[1]["path"])
}

func TestTraceMiddleware_DefaultStatus(t *testing.T) {
	buf, _ := logger.SetupTestLogger(t)

	handler := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	logger.AssertLogContains(t, buf, `"status":200`)
}
