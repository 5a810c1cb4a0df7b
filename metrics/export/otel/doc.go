// Package otel provides OpenTelemetry metric bindings for padron counters and
// histograms.
//
// [NewExporter] registers Int64ObservableCounter instruments for each counter
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [padron.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate engine state.
package otel
