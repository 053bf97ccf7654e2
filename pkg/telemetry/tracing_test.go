package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTrace_spanPerNotification(t *testing.T) {
	t.Parallel()

	sr, tp := newRecorder()

	one := entry.New(1, "One")
	c := observable.From([]*entry.Entry{one}, observable.WithID("todos"))
	detach := Trace(context.Background(), c,
		WithTracerProvider(tp),
		WithAttributeExtractor(func(item any) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.Int("entry.id", item.(*entry.Entry).ID())}
		}),
	)

	require.NoError(t, c.Insert(0, entry.New(2, "Two")))
	one.SetName("Three")

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, SpanCollectionChanged, spans[0].Name())
	a := attrs(spans[0])
	assert.Equal(t, "todos", a["observable.collection"].AsString())
	assert.Equal(t, "Insert", a["observable.action"].AsString())
	assert.Equal(t, int64(0), a["observable.index"].AsInt64())
	assert.Equal(t, int64(2), a["observable.len"].AsInt64())
	assert.Equal(t, int64(2), a["entry.id"].AsInt64())

	assert.Equal(t, SpanItemPropertyChanged, spans[1].Name())
	a = attrs(spans[1])
	assert.Equal(t, "Name", a["observable.property"].AsString())
	assert.Equal(t, int64(1), a["entry.id"].AsInt64())

	detach()
	one.SetName("Four")
	assert.Len(t, sr.Ended(), 2)
}

func TestTrace_filter(t *testing.T) {
	t.Parallel()

	sr, tp := newRecorder()

	one := entry.New(1, "One")
	c := observable.From([]*entry.Entry{one})
	defer Trace(context.Background(), c,
		WithTracerProvider(tp),
		WithTracerName("custom"),
		WithFilter(func(name string) bool { return name == SpanItemPropertyChanged }),
	)()

	c.Append(entry.New(2, "Two"))
	one.SetName("x")

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanItemPropertyChanged, spans[0].Name())
	assert.Equal(t, "custom", spans[0].InstrumentationScope().Name)
}
