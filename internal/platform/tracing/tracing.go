// Package tracing configures the OpenTelemetry tracer provider used by the
// gateway spans and the HTTP instrumentation.
package tracing

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/phrazzld/bhasha-api/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Option customises Setup.
type Option func(*options)

type options struct {
	stdout  io.Writer
	version string
}

// WithStdoutWriter redirects the stdout exporter, used when no OTLP endpoint
// is configured.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// WithVersion sets the service.version resource attribute.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// Setup installs a global tracer provider and propagator. When tracing is
// disabled the global no-op provider is left in place and the returned
// ShutdownFunc does nothing.
func Setup(ctx context.Context, logger *slog.Logger, cfg config.TracingConfig, opts ...Option) (ShutdownFunc, error) {
	if !cfg.Enabled {
		logger.DebugContext(ctx, "tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	o := options{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bhasha-api"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(o.version),
		),
	)
	if err != nil {
		logger.WarnContext(ctx, "otel resource init failed (continuing)", "error", err)
	}

	exporter, err := newExporter(ctx, logger, cfg, o)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "otel tracing initialized",
		"service", serviceName,
		"endpoint", cfg.OTLPEndpoint,
		"sample_ratio", clampRatio(cfg.SampleRatio))

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, logger *slog.Logger, cfg config.TracingConfig, o options) (sdktrace.SpanExporter, error) {
	endpoint := strings.TrimSpace(cfg.OTLPEndpoint)
	if endpoint != "" {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	}

	logger.WarnContext(ctx, "otel using stdout exporter (no OTLP endpoint configured)")
	return stdouttrace.New(stdouttrace.WithWriter(o.stdout))
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}
