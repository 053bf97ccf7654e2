package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

func TestInstrument_countsSignals(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	one := entry.New(1, "One")
	c := observable.From([]*entry.Entry{one}, observable.WithID("todos"))
	detach := Instrument(c, m)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.items.WithLabelValues("todos")))

	c.Append(entry.New(2, "Two"))
	one.SetName("Uno")
	one.SetDone(true)
	one.SetName("Eins")
	_, err := c.RemoveAt(0)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.collectionChanges.WithLabelValues("todos", "Insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collectionChanges.WithLabelValues("todos", "Remove")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemPropertyChanges.WithLabelValues("todos", entry.PropertyName)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemPropertyChanges.WithLabelValues("todos", entry.PropertyDone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.items.WithLabelValues("todos")))

	// The removed entry no longer counts.
	one.SetName("gone")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemPropertyChanges.WithLabelValues("todos", entry.PropertyName)))

	detach()
	c.Clear()
	assert.Zero(t, testutil.ToFloat64(m.collectionChanges.WithLabelValues("todos", "Clear")))
}

func TestNewMetrics_registersCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithSubsystem("sub"), WithConstLabels(prometheus.Labels{"app": "x"}))

	c := observable.New[*entry.Entry](observable.WithID("c1"))
	defer Instrument(c, m)()
	c.Append(entry.New(1, "a"))

	families, err := reg.Gather()
	require.NoError(t, err)

	var got []string
	for _, f := range families {
		got = append(got, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"observable_sub_collection_changes_total",
		"observable_sub_collection_items",
	}, got)

	assert.Panics(t, func() {
		NewMetrics(WithRegistry(reg), WithSubsystem("sub"), WithConstLabels(prometheus.Labels{"app": "x"}))
	})
}
