package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/ratelimit"
	"github.com/phrazzld/bhasha-api/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generation failed", generationFailed(generation.ErrUpstream), http.StatusBadGateway},
		{"invalid parameter", &generation.InvalidParameterError{Params: []string{"level"}}, http.StatusBadRequest},
		{"invalid profile", fmt.Errorf("%w: bad level", session.ErrInvalidProfile), http.StatusBadRequest},
		{"invalid turn", session.ErrInvalidTurn, http.StatusBadRequest},
		{"no exercises", session.ErrNoExercises, http.StatusBadRequest},
		{"invalid json", shared.ErrInvalidJSON, http.StatusBadRequest},
		{"session not found", session.ErrSessionNotFound, http.StatusNotFound},
		{"lesson not found", session.ErrLessonNotFound, http.StatusNotFound},
		{"lesson locked", fmt.Errorf("%w: complete lesson 1 first", session.ErrLessonLocked), http.StatusForbidden},
		{"cancelled", context.Canceled, StatusClientClosedRequest},
		{
			"cancelled while waiting for a slot",
			generationFailed(fmt.Errorf("%w: %w", ratelimit.ErrWaitCancelled, context.Canceled)),
			StatusClientClosedRequest,
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, GenerationFailedMessage,
		GetSafeErrorMessage(generationFailed(errors.New("status 403: API key sk-abcdefghijklmnop1234 revoked"))))
	assert.Equal(t, "Missing required parameters: level, category",
		GetSafeErrorMessage(&generation.InvalidParameterError{Params: []string{"level", "category"}}))
	assert.Equal(t, "Session not found", GetSafeErrorMessage(session.ErrSessionNotFound))
	assert.Equal(t, "Complete the previous lesson first", GetSafeErrorMessage(session.ErrLessonLocked))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("pq: connection refused")))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	type request struct {
		Message string `validate:"required"`
		Count   int    `validate:"lte=20"`
	}
	v := validator.New()

	assert.Equal(t, "Invalid Message: required field", SanitizeValidationError(v.Struct(request{})))
	assert.Equal(t, "Invalid Count: too large", SanitizeValidationError(v.Struct(request{Message: "hi", Count: 21})))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'x' Error: secret")))
}

func TestHandleAPIError_CancelledWritesNoBody(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/vocabulary/explanation", nil)
	w := httptest.NewRecorder()

	HandleAPIError(w, r, context.Canceled, "")

	assert.Equal(t, StatusClientClosedRequest, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleAPIError_CustomMessage(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	w := httptest.NewRecorder()

	HandleAPIError(w, r, session.ErrSessionNotFound, "Start a new session")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Start a new session")
}
