package limiters

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(clock *fakeClock) *AttemptLimiter {
	return NewAttemptLimiter(AttemptConfig{MaxAttempts: 5, Window: 15 * time.Minute, Now: clock.Now})
}

func TestAttemptLimiterBlocksAtThreshold(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "a@b.com"

	for i := 0; i < 4; i++ {
		l.RecordAttempt(id)
		if l.IsBlocked(id) {
			t.Fatalf("blocked after %d attempts", i+1)
		}
	}

	l.RecordAttempt(id)
	if !l.IsBlocked(id) {
		t.Fatal("expected block after 5 attempts")
	}

	l.RecordAttempt(id)
	if !l.IsBlocked(id) {
		t.Fatal("expected block to persist after 6th attempt")
	}
	if got := l.Attempts(id); got != 6 {
		t.Fatalf("expected 6 attempts, got %d", got)
	}
}

func TestAttemptLimiterExpiresAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "a@b.com"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(id)
	}
	if !l.IsBlocked(id) {
		t.Fatal("expected block")
	}

	clock.Advance(15*time.Minute + time.Millisecond)
	if l.IsBlocked(id) {
		t.Fatal("expected block to lapse after window")
	}
	if l.Len() != 0 {
		t.Fatalf("expected expired record to be evicted, len=%d", l.Len())
	}

	l.RecordAttempt(id)
	if got := l.Attempts(id); got != 1 {
		t.Fatalf("expected fresh count of 1, got %d", got)
	}
}

func TestAttemptLimiterWindowBoundaryInclusive(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "edge"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(id)
	}
	clock.Advance(15 * time.Minute)
	if !l.IsBlocked(id) {
		t.Fatal("record exactly one window old must still count")
	}
}

func TestAttemptLimiterRecordAfterExpiryRestarts(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "slow"

	for i := 0; i < 4; i++ {
		l.RecordAttempt(id)
	}
	clock.Advance(16 * time.Minute)
	l.RecordAttempt(id)

	if got := l.Attempts(id); got != 1 {
		t.Fatalf("expected count reset to 1, got %d", got)
	}
	if l.IsBlocked(id) {
		t.Fatal("unexpected block after restart")
	}
}

func TestAttemptLimiterSlidingRefresh(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "steady"

	// Each failure refreshes the timestamp, so spacing of 10m keeps the count alive.
	for i := 0; i < 5; i++ {
		l.RecordAttempt(id)
		clock.Advance(10 * time.Minute)
	}
	if !l.IsBlocked(id) {
		t.Fatal("expected block when each failure lands inside the window")
	}
}

func TestAttemptLimiterIsBlockedDoesNotCount(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "reader"

	l.RecordAttempt(id)
	l.RecordAttempt(id)
	for i := 0; i < 20; i++ {
		if l.IsBlocked(id) {
			t.Fatal("unexpected block")
		}
	}
	if got := l.Attempts(id); got != 2 {
		t.Fatalf("IsBlocked changed the count: %d", got)
	}
}

func TestAttemptLimiterUnknownIdentifier(t *testing.T) {
	l := newTestLimiter(newFakeClock())

	if l.IsBlocked("nobody") {
		t.Fatal("unknown identifier must not be blocked")
	}
	if d := l.RemainingTime("nobody"); d != 0 {
		t.Fatalf("expected zero remaining time, got %v", d)
	}
}

func TestAttemptLimiterRemainingTime(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)
	id := "timer"

	l.RecordAttempt(id)
	d := l.RemainingTime(id)
	if d > 15*time.Minute || d <= 15*time.Minute-time.Second {
		t.Fatalf("unexpected remaining time for fresh record: %v", d)
	}

	clock.Advance(5 * time.Minute)
	if d := l.RemainingTime(id); d != 10*time.Minute {
		t.Fatalf("expected 10m remaining, got %v", d)
	}

	clock.Advance(20 * time.Minute)
	if d := l.RemainingTime(id); d != 0 {
		t.Fatalf("expected remaining time clamped to zero, got %v", d)
	}
}

func TestAttemptLimiterReset(t *testing.T) {
	l := newTestLimiter(newFakeClock())
	id := "reset"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(id)
	}
	l.Reset(id)
	if l.IsBlocked(id) {
		t.Fatal("expected reset to clear block")
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty limiter, len=%d", l.Len())
	}
}

func TestAttemptLimiterPrune(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	l.RecordAttempt("old-1")
	l.RecordAttempt("old-2")
	clock.Advance(20 * time.Minute)
	l.RecordAttempt("fresh")

	if removed := l.Prune(); removed != 2 {
		t.Fatalf("expected 2 pruned records, got %d", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 remaining record, got %d", l.Len())
	}
}

func TestAttemptLimiterDefaults(t *testing.T) {
	l := NewAttemptLimiter(AttemptConfig{})
	cfg := l.Config()
	if cfg.MaxAttempts != DefaultMaxAttempts || cfg.Window != DefaultWindow || cfg.Now == nil {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestAttemptLimiterNilSafe(t *testing.T) {
	var l *AttemptLimiter
	l.RecordAttempt("x")
	l.Reset("x")
	if l.IsBlocked("x") || l.RemainingTime("x") != 0 || l.Prune() != 0 || l.Len() != 0 {
		t.Fatal("nil limiter must be inert")
	}
}

func TestAttemptLimiterConcurrentRecords(t *testing.T) {
	clock := newFakeClock()
	l := NewAttemptLimiter(AttemptConfig{MaxAttempts: 1000, Window: time.Hour, Now: clock.Now})
	id := "race"

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.RecordAttempt(id)
				_ = l.IsBlocked(id)
			}
		}()
	}
	wg.Wait()

	if got := l.Attempts(id); got != 500 {
		t.Fatalf("lost updates: expected 500, got %d", got)
	}
}

func TestRemainingMinutes(t *testing.T) {
	cases := map[time.Duration]int{
		0:                         0,
		-time.Second:              0,
		time.Millisecond:          1,
		time.Minute:               1,
		time.Minute + time.Second: 2,
		15 * time.Minute:          15,
	}
	for d, want := range cases {
		if got := RemainingMinutes(d); got != want {
			t.Fatalf("RemainingMinutes(%v) = %d, want %d", d, got, want)
		}
	}
}
