package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute keys that leave the process. Input and output paths are
// recorded under seqpipe.path.* and are stripped unless Config.TracePaths is set.
var (
	exportedPrefixes = []string{"seqpipe.", "error.", "http.", "url.", "exception."}
	pathPrefix       = "seqpipe.path."
)

// attributeFilter is a SpanProcessor that drops span attributes outside the
// exported key set before forwarding to a delegate processor.
type attributeFilter struct {
	delegate    sdktrace.SpanProcessor
	exportPaths bool
	logger      *slog.Logger
}

// NewAttributeFilter wraps delegate. When logger is non-nil, each dropped key
// is logged at debug level.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, exportPaths bool, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, exportPaths: exportPaths, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd forwards a filtered read-only view of s.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) keep(key string) bool {
	if strings.HasPrefix(key, pathPrefix) {
		return f.exportPaths
	}

	if key == "error" {
		return true
	}

	for _, prefix := range exportedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.keep(string(kv.Key)) {
			kept = append(kept, kv)

			continue
		}

		if s.filter.logger != nil {
			s.filter.logger.Debug("span attribute dropped", "key", string(kv.Key), "span", s.Name())
		}
	}

	return kept
}
