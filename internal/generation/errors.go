package generation

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the generation pipeline
var (
	// ErrInvalidParameter is returned when a caller supplies a missing or empty
	// parameter. It is a programmer/caller error and must not be retried.
	ErrInvalidParameter = errors.New("invalid generation parameter")

	// ErrConfiguration is returned for an unknown request kind or a broken
	// prompt catalog.
	ErrConfiguration = errors.New("invalid generation configuration")

	// ErrUpstream is returned when the language model API fails at the
	// transport or authentication level, or returns no usable content.
	ErrUpstream = errors.New("language model request failed")

	// ErrContentBlocked is returned when the language model refuses to answer
	// because of its safety filters. It always travels wrapped in ErrUpstream.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrResponseFormat is returned when the response text cannot be parsed
	// as structured data.
	ErrResponseFormat = errors.New("failed to parse response as structured data")

	// ErrValidation is the parent of every schema violation found in a parsed
	// response.
	ErrValidation = errors.New("response failed schema validation")

	// ErrGenerationFailed is the single user-facing failure category for any
	// upstream or response problem.
	ErrGenerationFailed = errors.New("generation failed")
)

// MissingFieldsError reports required fields that were absent or empty.
// Index is the 1-based element position for array responses and 0 for a
// single object.
type MissingFieldsError struct {
	Index  int
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	fields := strings.Join(e.Fields, ", ")
	if e.Index > 0 {
		return fmt.Sprintf("element %d is missing required fields: %s", e.Index, fields)
	}
	return "missing required fields: " + fields
}

// Unwrap makes MissingFieldsError match ErrValidation.
func (e *MissingFieldsError) Unwrap() error { return ErrValidation }

// InvalidOptionsError reports a malformed answer option list, such as a quiz
// question without exactly three distractors.
type InvalidOptionsError struct {
	Index  int
	Reason string
}

func (e *InvalidOptionsError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("element %d has invalid options: %s", e.Index, e.Reason)
	}
	return "invalid options: " + e.Reason
}

// Unwrap makes InvalidOptionsError match ErrValidation.
func (e *InvalidOptionsError) Unwrap() error { return ErrValidation }

// ShapeMismatchError reports a top-level JSON value of the wrong type, for
// example an object where an array of quiz questions was expected.
type ShapeMismatchError struct {
	Expected string
	Got      string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("expected JSON %s, got %s", e.Expected, e.Got)
}

// Unwrap makes ShapeMismatchError match ErrValidation.
func (e *ShapeMismatchError) Unwrap() error { return ErrValidation }

// InvalidParameterError names the parameters that failed the gateway's
// pre-flight check.
type InvalidParameterError struct {
	Params []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidParameter.Error(), strings.Join(e.Params, ", "))
}

// Unwrap makes InvalidParameterError match ErrInvalidParameter.
func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }
