// Package telemetry exports the signals of an observable collection to
// Prometheus and OpenTelemetry.
//
// Both exporters attach to an observable.Source as ordinary listeners, so
// they observe exactly what any other subscriber observes and never change
// delivery order or timing for listeners registered before them.
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	detachMetrics := telemetry.Instrument(items, m)
//	defer detachMetrics()
//
//	detachTrace := telemetry.Trace(ctx, items, telemetry.WithTracerName("myapp"))
//	defer detachTrace()
package telemetry
