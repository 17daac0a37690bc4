// Package gateway is the single entry point through which the application
// asks a language model for content.
//
// Every operation follows the same pipeline: check the caller's parameters,
// render the prompt for the request kind, wait for a slot in the shared rate
// limiter, call the configured generation.Provider, then validate the raw
// text against the kind's schema. Caller mistakes (missing parameters, an
// unknown kind) are returned as-is so they fail fast. Anything that goes
// wrong after the request leaves the process is reported as a
// *GenerationFailedError, which matches generation.ErrGenerationFailed and
// keeps the underlying cause for logs.
//
// The gateway never retries and never substitutes fallback content.
package gateway
