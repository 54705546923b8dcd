// Package otel publishes authshield counters and the login latency histogram
// through an OpenTelemetry Meter.
//
// [NewExporter] registers one Int64ObservableCounter per counter and a set of
// gauges per histogram (cumulative buckets, count and sum). A single callback
// reads Engine.MetricsSnapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
