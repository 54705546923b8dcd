package authshield

import (
	"sync/atomic"
	"testing"
	"time"
)

// loginOutcomeMetrics is what one Login call records: an outcome counter
// plus a latency observation.
var loginOutcomeMetrics = [...]MetricID{
	MetricLoginSuccess,
	MetricLoginFailure,
	MetricLoginFailure,
	MetricLoginRateLimited,
}

func BenchmarkLoginOutcomeMetricsParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Inc(loginOutcomeMetrics[i%len(loginOutcomeMetrics)])
			m.Observe(MetricLoginLatency, time.Duration(i%600)*time.Millisecond)
			i++
		}
	})
}

func BenchmarkLoginOutcomeMetricsDisabledParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricLoginFailure)
			m.Observe(MetricLoginLatency, time.Millisecond)
		}
	})
}

// Scrapes run while logins keep counting.
func BenchmarkMetricsSnapshotUnderLoad(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	var stop atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !stop.Load() {
			m.Inc(MetricLoginFailure)
			m.Observe(MetricLoginLatency, 3*time.Millisecond)
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Snapshot()
	}
	b.StopTimer()

	stop.Store(true)
	<-done
}
