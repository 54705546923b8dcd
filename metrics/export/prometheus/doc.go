// Package prometheus exposes authshield metrics through
// prometheus/client_golang.
//
// [Collector] implements prometheus.Collector over Engine.MetricsSnapshot.
// Counter names are authshield_*_total; the login latency histogram is
// authshield_login_latency_seconds. [Handler] mounts the collector on a
// private registry.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
