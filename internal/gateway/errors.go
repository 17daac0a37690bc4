package gateway

import (
	"errors"
	"fmt"

	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/ratelimit"
)

// Cause classifies why a generation request failed. It is meant for logs and
// metrics, never for end users.
type Cause string

// Failure causes
const (
	CauseUpstream               Cause = "upstream"
	CauseResponseFormat         Cause = "response_format"
	CauseMissingFields          Cause = "missing_fields"
	CauseInvalidOptions         Cause = "invalid_options"
	CauseShapeMismatch          Cause = "shape_mismatch"
	CauseRateLimitWaitCancelled Cause = "rate_limit_wait_cancelled"
)

// GenerationFailedError is returned for every upstream or response problem.
type GenerationFailedError struct {
	Kind  generation.Kind
	Cause Cause
	Err   error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", generation.ErrGenerationFailed, e.Kind, e.Cause, e.Err)
}

// Is makes the error match generation.ErrGenerationFailed.
func (e *GenerationFailedError) Is(target error) bool {
	return target == generation.ErrGenerationFailed
}

// Unwrap exposes the underlying cause.
func (e *GenerationFailedError) Unwrap() error { return e.Err }

// fail wraps err in a GenerationFailedError with a cause derived from it.
func fail(kind generation.Kind, err error) *GenerationFailedError {
	return &GenerationFailedError{Kind: kind, Cause: causeOf(err), Err: err}
}

func causeOf(err error) Cause {
	var (
		missing *generation.MissingFieldsError
		options *generation.InvalidOptionsError
		shape   *generation.ShapeMismatchError
	)

	switch {
	case errors.Is(err, ratelimit.ErrWaitCancelled):
		return CauseRateLimitWaitCancelled
	case errors.As(err, &missing):
		return CauseMissingFields
	case errors.As(err, &options):
		return CauseInvalidOptions
	case errors.As(err, &shape):
		return CauseShapeMismatch
	case errors.Is(err, generation.ErrResponseFormat):
		return CauseResponseFormat
	default:
		return CauseUpstream
	}
}
