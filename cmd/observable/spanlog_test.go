package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
	"github.com/vango-dev/observable/pkg/telemetry"
)

func TestSpanLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(newSpanLogger(logger)))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "work")
	span.SetAttributes(attribute.String("k", "v"))
	span.End()

	assert.Contains(t, buf.String(), "msg=work")
	assert.Contains(t, buf.String(), "k=v")
	assert.Contains(t, buf.String(), "component=trace")
}

func TestSpanLogger_withEntryTracing(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(newSpanLogger(logger)))
	defer tp.Shutdown(context.Background())

	e := entry.New(1, "One")
	c := observable.From([]*entry.Entry{e})
	detach := telemetry.Trace(context.Background(), c,
		telemetry.WithTracerProvider(tp),
		telemetry.WithAttributeExtractor(entryAttributes))
	defer detach()

	e.SetName("Uno")

	require.Contains(t, buf.String(), "msg="+telemetry.SpanItemPropertyChanged)
	assert.Contains(t, buf.String(), "entry.name=Uno")
	assert.Contains(t, buf.String(), "observable.property=Name")
}
