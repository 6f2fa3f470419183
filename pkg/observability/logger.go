package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
	attrRunID   = "run_id"
)

// RunAttrs are the identity attributes stamped on every log record of a run.
type RunAttrs struct {
	Service string
	Env     string
	Mode    AppMode
	RunID   string
}

func (ra RunAttrs) slogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(attrService, ra.Service),
		slog.String(attrMode, string(ra.Mode)),
	}

	if ra.Env != "" {
		attrs = append(attrs, slog.String(attrEnv, ra.Env))
	}

	if ra.RunID != "" {
		attrs = append(attrs, slog.String(attrRunID, ra.RunID))
	}

	return attrs
}

// RunHandler is an [slog.Handler] that adds the active span's trace_id and
// span_id to each record. Run attributes are attached to the inner handler
// up front, so later WithGroup calls do not nest them.
type RunHandler struct {
	inner slog.Handler
}

// NewRunHandler wraps inner with run identity and trace context injection.
func NewRunHandler(inner slog.Handler, attrs RunAttrs) *RunHandler {
	return &RunHandler{inner: inner.WithAttrs(attrs.slogAttrs())}
}

// Enabled delegates to the inner handler.
func (rh *RunHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return rh.inner.Enabled(ctx, level)
}

// Handle adds trace context attributes from the span context, then delegates.
func (rh *RunHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := rh.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("run handler: %w", err)
	}

	return nil
}

// WithAttrs returns a RunHandler with additional attributes on the inner handler.
func (rh *RunHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RunHandler{inner: rh.inner.WithAttrs(attrs)}
}

// WithGroup returns a RunHandler with a group prefix on the inner handler.
func (rh *RunHandler) WithGroup(name string) slog.Handler {
	return &RunHandler{inner: rh.inner.WithGroup(name)}
}

// NewLogger builds the run logger writing to w in text or JSON form.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(w, handlerOpts)
	} else {
		inner = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(NewRunHandler(inner, RunAttrs{
		Service: cfg.ServiceName,
		Env:     cfg.Environment,
		Mode:    cfg.Mode,
		RunID:   cfg.RunID,
	}))
}
