// Package metrics provides lock-free counters and latency histograms for
// authshield observability.
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically. Histograms use 8 fixed buckets (≤5ms … +Inf) and keep a running
// sum. Both are allocation-free on the write path.
//
// This package owns metric storage only. Export (Prometheus, OTel) lives in
// metrics/export/ and reads engine snapshots.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import authshield or any sibling package.
//   - Expose global metric registries.
package metrics
