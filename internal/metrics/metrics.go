package metrics

import (
	"sync/atomic"
	"time"
)

// BucketCount is the number of fixed latency buckets: ≤5ms, ≤10ms, ≤25ms,
// ≤50ms, ≤100ms, ≤250ms, ≤500ms and +Inf.
const BucketCount = 8

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Counters is a fixed-size set of monotonically increasing counters indexed
// by small integers. Out-of-range indexes are ignored.
type Counters struct {
	slots []paddedCounter
}

func NewCounters(n int) *Counters {
	if n < 0 {
		n = 0
	}
	return &Counters{slots: make([]paddedCounter, n)}
}

func (c *Counters) Inc(id int) {
	if c == nil || id < 0 || id >= len(c.slots) {
		return
	}
	atomic.AddUint64(&c.slots[id].value, 1)
}

// Add increments counter id by n in one atomic operation.
func (c *Counters) Add(id int, n uint64) {
	if c == nil || id < 0 || id >= len(c.slots) || n == 0 {
		return
	}
	atomic.AddUint64(&c.slots[id].value, n)
}

func (c *Counters) Value(id int) uint64 {
	if c == nil || id < 0 || id >= len(c.slots) {
		return 0
	}
	return atomic.LoadUint64(&c.slots[id].value)
}

func (c *Counters) Len() int {
	if c == nil {
		return 0
	}
	return len(c.slots)
}

// Histogram counts observations per bucket. Buckets are not cumulative.
type Histogram struct {
	buckets [BucketCount]uint64
	sumNs   uint64
}

func (h *Histogram) Observe(d time.Duration) {
	if h == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	atomic.AddUint64(&h.buckets[BucketIndex(d)], 1)
	atomic.AddUint64(&h.sumNs, uint64(d))
}

// Buckets returns a copy of the per-bucket counts.
func (h *Histogram) Buckets() []uint64 {
	out := make([]uint64, BucketCount)
	if h == nil {
		return out
	}
	for i := range out {
		out[i] = atomic.LoadUint64(&h.buckets[i])
	}
	return out
}

// Sum returns the total observed duration.
func (h *Histogram) Sum() time.Duration {
	if h == nil {
		return 0
	}
	return time.Duration(atomic.LoadUint64(&h.sumNs))
}

func BucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
