package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bhasha-api/internal/api/shared"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/platform/logger"
	"github.com/phrazzld/bhasha-api/internal/session"
)

// StatusClientClosedRequest is the non-standard status logged when the
// client went away before a response could be produced.
const StatusClientClosedRequest = 499

// GenerationFailedMessage is the only detail clients see when the language
// model could not produce usable content.
const GenerationFailedMessage = "We couldn't generate content right now. Please try again."

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Client went away, possibly while waiting for a rate limit slot
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest

	// Generation errors
	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	// Bad request errors
	case errors.Is(err, generation.ErrInvalidParameter),
		errors.Is(err, session.ErrInvalidProfile),
		errors.Is(err, session.ErrInvalidTurn),
		errors.Is(err, session.ErrNoExercises),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrLessonNotFound):
		return http.StatusNotFound

	// Authorization errors
	case errors.Is(err, session.ErrLessonLocked):
		return http.StatusForbidden

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		paramErr       *generation.InvalidParameterError
		validationErrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled"

	case errors.Is(err, generation.ErrGenerationFailed):
		return GenerationFailedMessage

	case errors.As(err, &paramErr):
		return "Missing required parameters: " + strings.Join(paramErr.Params, ", ")

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"

	case errors.Is(err, session.ErrInvalidTurn):
		return "Message cannot be empty"

	case errors.Is(err, session.ErrNoExercises):
		return "No exercises have been issued for this lesson"

	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, session.ErrLessonNotFound):
		return "Lesson not found"

	case errors.Is(err, session.ErrLessonLocked):
		return "Complete the previous lesson first"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		field := fe.Field()
		if fe.Tag() != "" {
			return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
		}
		return fmt.Sprintf("Invalid %s", field)
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. A non-empty message replaces
// the safe default message. Cancelled requests are only logged.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)

	if status == StatusClientClosedRequest {
		logger.FromContextOrDefault(r.Context()).Debug("request cancelled by client",
			"path", r.URL.Path,
			"trace_id", shared.GetTraceID(r.Context()))
		w.WriteHeader(status)
		return
	}

	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
