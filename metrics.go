package authshield

import (
	"time"

	"github.com/MrEthical07/authshield/internal/metrics"
)

// MetricID identifies one Engine counter or histogram.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricLimiterUnavailable
	MetricSignupSuccess
	MetricSignupDuplicate
	MetricSignupRejected
	MetricLogout
	MetricTokenRefresh
	MetricTokenRefreshMissing
	MetricPasswordResetRequest
	MetricEmailVerificationSuccess
	MetricEmailVerificationFailure
	MetricStrengthCheck
	MetricLimiterPruned
	// MetricLoginLatency is the only histogram.
	MetricLoginLatency
	metricIDCount
)

// Metrics holds Engine counters. A disabled Metrics ignores every write.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      *metrics.Counters
	loginLatency  metrics.Histogram
}

// MetricsSnapshot is a point-in-time copy. Histogram buckets are not
// cumulative; HistogramSums holds the total observed duration per histogram.
type MetricsSnapshot struct {
	Counters      map[MetricID]uint64
	Histograms    map[MetricID][]uint64
	HistogramSums map[MetricID]time.Duration
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
		counters:      metrics.NewCounters(int(metricIDCount)),
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters.Inc(int(id))
}

// Add increments id by n. Non-positive n is ignored.
func (m *Metrics) Add(id MetricID, n int) {
	if m == nil || !m.enabled || id >= metricIDCount || n <= 0 {
		return
	}
	m.counters.Add(int(id), uint64(n))
}

func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricLoginLatency {
		return
	}
	m.loginLatency.Observe(d)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters.Value(int(id))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return emptySnapshot()
	}

	s := MetricsSnapshot{
		Counters:      make(map[MetricID]uint64, int(metricIDCount)),
		Histograms:    make(map[MetricID][]uint64, 1),
		HistogramSums: make(map[MetricID]time.Duration, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricLoginLatency {
			continue
		}
		s.Counters[id] = m.counters.Value(int(id))
	}
	if m.enableLatency {
		s.Histograms[MetricLoginLatency] = m.loginLatency.Buckets()
		s.HistogramSums[MetricLoginLatency] = m.loginLatency.Sum()
	}
	return s
}

func emptySnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Counters:      map[MetricID]uint64{},
		Histograms:    map[MetricID][]uint64{},
		HistogramSums: map[MetricID]time.Duration{},
	}
}
