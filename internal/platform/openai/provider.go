package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/bhasha-api/internal/config"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/redact"
	openai "github.com/sashabaranov/go-openai"
)

// Provider implements generation.Provider with a single-message chat completion.
type Provider struct {
	logger *slog.Logger
	client *openai.Client
}

var _ generation.Provider = (*Provider)(nil)

// Option customises the OpenAI client.
type Option func(*openai.ClientConfig)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *openai.ClientConfig) {
		c.HTTPClient = client
	}
}

// NewProvider creates an OpenAI-backed provider. A non-empty OpenAIBaseURL
// points the client at a compatible endpoint.
func NewProvider(logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrConfiguration)
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
	}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	return &Provider{
		logger: logger.With(slog.String("provider", "openai")),
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

// Generate sends prompt as one user message and returns the first choice.
func (p *Provider) Generate(ctx context.Context, prompt string, model string) (string, error) {
	p.logger.DebugContext(ctx, "Making chat completion call",
		"model", model,
		"prompt_length", len(prompt))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", p.classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generation.ErrUpstream)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		p.logger.WarnContext(ctx, "chat completion stopped by content filter")
		return "", fmt.Errorf("%w: %w", generation.ErrUpstream, generation.ErrContentBlocked)
	}

	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrUpstream)
	}

	p.logger.DebugContext(ctx, "chat completion successful", "response_length", len(choice.Message.Content))
	return choice.Message.Content, nil
}

func (p *Provider) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", generation.ErrUpstream, ctxErr)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		p.logger.ErrorContext(ctx, "chat completion API error",
			"status_code", apiErr.HTTPStatusCode,
			"type", apiErr.Type,
			"error", redact.String(apiErr.Message))
		return fmt.Errorf("%w: openai API status %d: %s",
			generation.ErrUpstream, apiErr.HTTPStatusCode, redact.String(apiErr.Message))
	}

	p.logger.ErrorContext(ctx, "chat completion call error", "error", redact.Error(err))
	return fmt.Errorf("%w: %s", generation.ErrUpstream, redact.Error(err))
}
