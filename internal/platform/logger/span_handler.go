package logger

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// SpanHandler is a slog.Handler that adds the active OpenTelemetry span's
// trace and span IDs to each record.
type SpanHandler struct {
	handler slog.Handler
}

// NewSpanHandler creates a SpanHandler that writes JSON to out.
func NewSpanHandler(out io.Writer, opts *slog.HandlerOptions) *SpanHandler {
	var handlerOpts slog.HandlerOptions
	if opts != nil {
		handlerOpts = *opts
	}
	return &SpanHandler{handler: slog.NewJSONHandler(out, &handlerOpts)}
}

// Enabled implements the slog.Handler interface.
func (h *SpanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface.
func (h *SpanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SpanHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup implements the slog.Handler interface.
func (h *SpanHandler) WithGroup(name string) slog.Handler {
	return &SpanHandler{handler: h.handler.WithGroup(name)}
}

// Handle implements the slog.Handler interface.
func (h *SpanHandler) Handle(ctx context.Context, record slog.Record) error {
	if ctx == nil {
		return h.handler.Handle(ctx, record)
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.handler.Handle(ctx, record)
	}

	enhanced := record.Clone()
	enhanced.AddAttrs(
		slog.String("span_trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
	return h.handler.Handle(ctx, enhanced)
}
