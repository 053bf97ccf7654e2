package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/observable/pkg/observable"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "observable").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "observable",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors shared by every instrumented
// collection. Series are partitioned by the collection ID.
//
// Metrics collected:
//   - observable_collection_changes_total: structural changes by collection and action
//   - observable_item_property_changes_total: item field changes by collection and property
//   - observable_collection_items: current item count by collection
type Metrics struct {
	collectionChanges   *prometheus.CounterVec
	itemPropertyChanges *prometheus.CounterVec
	items               *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors. Registering twice in the
// same registry panics, as with any promauto collector.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		collectionChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collection_changes_total",
			Help:        "Total number of structural collection changes",
			ConstLabels: config.ConstLabels,
		}, []string{"collection", "action"}),

		itemPropertyChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "item_property_changes_total",
			Help:        "Total number of item property changes re-raised by collections",
			ConstLabels: config.ConstLabels,
		}, []string{"collection", "property"}),

		items: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "collection_items",
			Help:        "Number of items currently held by a collection",
			ConstLabels: config.ConstLabels,
		}, []string{"collection"}),
	}
}

// Instrument records the signals of src in m until detach is called.
// The item gauge is set to the current length right away.
func Instrument[T any](src observable.Source[T], m *Metrics) (detach func()) {
	id := src.ID()
	m.items.WithLabelValues(id).Set(float64(src.Len()))

	hc := src.SubscribeCollectionChanged(func(e observable.CollectionChanged[T]) {
		m.collectionChanges.WithLabelValues(id, e.Action.String()).Inc()
		m.items.WithLabelValues(id).Set(float64(src.Len()))
	})
	hp := src.SubscribeItemPropertyChanged(func(e observable.ItemPropertyChanged[T]) {
		m.itemPropertyChanges.WithLabelValues(id, e.Property).Inc()
	})

	return func() {
		src.Unsubscribe(hc)
		src.Unsubscribe(hp)
		m.items.DeleteLabelValues(id)
	}
}
