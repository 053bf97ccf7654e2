package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/observable/pkg/observable"
)

// Default tracer name for instrumented collections.
const defaultTracerName = "observable"

// Span names.
const (
	SpanCollectionChanged   = "observable.collection_changed"
	SpanItemPropertyChanged = "observable.item_property_changed"
)

// TraceConfig configures notification tracing.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "observable").
	TracerName string

	// Provider supplies the tracer. If nil, the global provider is used.
	Provider trace.TracerProvider

	// Filter decides per event which notifications are traced, given the
	// span name. If nil, all are traced.
	Filter func(spanName string) bool

	// AttributeExtractor adds attributes describing an item.
	AttributeExtractor func(item any) []attribute.KeyValue
}

// TraceOption configures notification tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TraceOption {
	return func(c *TraceConfig) {
		c.Provider = provider
	}
}

// WithFilter sets a filter function for notifications.
func WithFilter(filter func(spanName string) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom item attribute extractor.
func WithAttributeExtractor(extractor func(item any) []attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName: defaultTracerName,
	}
}

// Trace records one span per notification raised by src, as a child of
// ctx, until detach is called. Notifications are synchronous, so each span
// starts and ends inside the listener call.
func Trace[T any](ctx context.Context, src observable.Source[T], opts ...TraceOption) (detach func()) {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(config.TracerName)
	id := src.ID()

	record := func(name string, attrs []attribute.KeyValue, items ...T) {
		if config.Filter != nil && !config.Filter(name) {
			return
		}
		if config.AttributeExtractor != nil {
			for _, item := range items {
				attrs = append(attrs, config.AttributeExtractor(item)...)
			}
		}

		_, span := tracer.Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		span.SetStatus(codes.Ok, "")
		span.End()
	}

	hc := src.SubscribeCollectionChanged(func(e observable.CollectionChanged[T]) {
		record(SpanCollectionChanged, []attribute.KeyValue{
			attribute.String("observable.collection", id),
			attribute.String("observable.action", e.Action.String()),
			attribute.Int("observable.index", e.Index()),
			attribute.Int("observable.changed_items", len(e.Items())),
			attribute.Int("observable.len", src.Len()),
		}, e.Items()...)
	})
	hp := src.SubscribeItemPropertyChanged(func(e observable.ItemPropertyChanged[T]) {
		record(SpanItemPropertyChanged, []attribute.KeyValue{
			attribute.String("observable.collection", id),
			attribute.String("observable.property", e.Property),
		}, e.Item)
	})

	return func() {
		src.Unsubscribe(hc)
		src.Unsubscribe(hp)
	}
}
