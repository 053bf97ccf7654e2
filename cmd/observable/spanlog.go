package main

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanLogger is a span exporter that writes finished spans to a logger.
type spanLogger struct {
	logger *slog.Logger
}

var _ sdktrace.SpanExporter = (*spanLogger)(nil)

func newSpanLogger(logger *slog.Logger) *spanLogger {
	return &spanLogger{logger: logger.With("component", "trace")}
}

// ExportSpans implements sdktrace.SpanExporter.
func (s *spanLogger) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		attrs := []any{
			"trace_id", span.SpanContext().TraceID().String(),
			"span_id", span.SpanContext().SpanID().String(),
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, string(kv.Key), kv.Value.Emit())
		}
		s.logger.InfoContext(ctx, span.Name(), attrs...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (s *spanLogger) Shutdown(context.Context) error {
	return nil
}
