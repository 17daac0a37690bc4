package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/bhasha-api/internal/config"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/redact"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by Provider.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Provider implements generation.Provider using the Gemini API.
type Provider struct {
	logger *slog.Logger
	models contentGenerator
}

var _ generation.Provider = (*Provider)(nil)

// Option customises the Gemini client.
type Option func(*genai.ClientConfig)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = client
	}
}

// NewProvider creates a Gemini-backed provider from the LLM configuration.
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrConfiguration)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %s",
			generation.ErrConfiguration, redact.Error(err))
	}

	logger.InfoContext(ctx, "Gemini provider initialized", "model", cfg.ModelName)

	return newProvider(logger, client.Models), nil
}

func newProvider(logger *slog.Logger, models contentGenerator) *Provider {
	return &Provider{
		logger: logger.With(slog.String("provider", "gemini")),
		models: models,
	}
}

// Generate sends prompt to model and returns the text of the first candidate.
func (p *Provider) Generate(ctx context.Context, prompt string, model string) (string, error) {
	p.logger.DebugContext(ctx, "Making Gemini API call",
		"model", model,
		"prompt_length", len(prompt))

	resp, err := p.models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", p.classify(ctx, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrUpstream)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" &&
		resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		p.logger.WarnContext(ctx, "Gemini blocked the prompt",
			"block_reason", string(resp.PromptFeedback.BlockReason))
		return "", fmt.Errorf("%w: %w: prompt blocked (%s)",
			generation.ErrUpstream, generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrUpstream)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		p.logger.WarnContext(ctx, "Gemini response stopped by safety filters")
		return "", fmt.Errorf("%w: %w", generation.ErrUpstream, generation.ErrContentBlocked)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrUpstream)
	}

	p.logger.DebugContext(ctx, "Gemini API call successful", "response_length", len(text))
	return text, nil
}

// classify wraps a client error in ErrUpstream. Context errors stay
// reachable through errors.Is; API key material never reaches the message.
func (p *Provider) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", generation.ErrUpstream, ctxErr)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		p.logger.ErrorContext(ctx, "Gemini API returned an error",
			"status_code", apiErr.Code,
			"status", apiErr.Status,
			"error", redact.String(apiErr.Message))
		return fmt.Errorf("%w: gemini API status %d (%s): %s",
			generation.ErrUpstream, apiErr.Code, apiErr.Status, redact.String(apiErr.Message))
	}

	p.logger.ErrorContext(ctx, "Gemini API call error", "error", redact.Error(err))
	return fmt.Errorf("%w: %s", generation.ErrUpstream, redact.Error(err))
}
