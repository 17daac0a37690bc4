package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/bhasha-api/internal/config"
	"github.com/phrazzld/bhasha-api/internal/gateway"
	"github.com/phrazzld/bhasha-api/internal/generation"
	"github.com/phrazzld/bhasha-api/internal/generation/prompt"
	"github.com/phrazzld/bhasha-api/internal/platform/gemini"
	"github.com/phrazzld/bhasha-api/internal/platform/openai"
	"github.com/phrazzld/bhasha-api/internal/platform/tracing"
	"github.com/phrazzld/bhasha-api/internal/ratelimit"
	"github.com/phrazzld/bhasha-api/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// providerTimeout bounds a single language model call.
const providerTimeout = 60 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	limiter  *ratelimit.Window
	sessions *session.Store
	gateway  *gateway.Gateway

	shutdownTracing tracing.ShutdownFunc
}

// newApplication wires tracing, the language model provider, the rate
// limiter, the gateway and the session store.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	shutdownTracing, err := tracing.Setup(ctx, logger, cfg.Tracing, tracing.WithVersion(version))
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	app := &application{
		config:          cfg,
		logger:          logger,
		shutdownTracing: shutdownTracing,
	}

	provider, err := newProvider(ctx, logger, cfg.LLM)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	templater, err := newTemplater(cfg.LLM)
	if err != nil {
		app.cleanup()
		return nil, err
	}

	app.limiter = ratelimit.New(ratelimit.Config{
		Limit:        cfg.RateLimit.RequestsPerWindow,
		Window:       cfg.RateLimit.Window(),
		PollInterval: cfg.RateLimit.PollInterval(),
	}, ratelimit.WithLogger(logger.With(slog.String("component", "ratelimit"))))

	app.gateway, err = gateway.New(provider, app.limiter, templater, cfg.LLM.ModelName,
		gateway.WithLogger(logger),
		gateway.WithTracer(otel.Tracer("github.com/phrazzld/bhasha-api/internal/gateway")))
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	app.sessions = session.NewStore(session.Config{
		TTL:          cfg.Session.TTL(),
		MaxChatTurns: cfg.Session.MaxChatTurns,
	}, session.WithLogger(logger.With(slog.String("component", "session"))))

	return app, nil
}

// newProvider creates the configured language model provider. Outbound
// calls are traced through an otelhttp transport.
func newProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Provider, error) {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   providerTimeout,
	}

	switch cfg.Provider {
	case "openai":
		provider, err := openai.NewProvider(logger, cfg, openai.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
		}
		return provider, nil
	case "gemini":
		provider, err := gemini.NewProvider(ctx, logger, cfg, gemini.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrConfiguration, cfg.Provider)
	}
}

// newTemplater loads the prompt catalog override if one is configured and
// the embedded catalog otherwise.
func newTemplater(cfg config.LLMConfig) (*prompt.Templater, error) {
	templater, err := prompt.Load(cfg.PromptCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt catalog: %w", err)
	}
	return templater, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.shutdownTracing == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Error("failed to flush traces", slog.String("error", err.Error()))
	}
	app.shutdownTracing = nil
}
