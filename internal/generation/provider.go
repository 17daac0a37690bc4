package generation

import "context"

// Provider is the boundary between the application core and an external
// language model API. Implementations live under internal/platform.
type Provider interface {
	// Generate sends prompt to the given model and returns the raw text of
	// the first candidate. Transport, authentication and empty-response
	// failures are returned wrapped in ErrUpstream.
	Generate(ctx context.Context, prompt string, model string) (string, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, prompt string, model string) (string, error)

// Generate calls f.
func (f ProviderFunc) Generate(ctx context.Context, prompt string, model string) (string, error) {
	return f(ctx, prompt, model)
}
