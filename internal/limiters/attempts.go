package limiters

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// AttemptConfig configures an attempt limiter. Zero values fall back to
// DefaultMaxAttempts and DefaultWindow; a nil Now uses time.Now.
type AttemptConfig struct {
	MaxAttempts int
	Window      time.Duration
	Now         func() time.Time
}

func (c AttemptConfig) withDefaults() AttemptConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type attemptRecord struct {
	count int
	last  time.Time
}

// AttemptLimiter counts failed attempts per identifier in memory and blocks
// an identifier once MaxAttempts failures fall inside a rolling window.
//
// A record whose last attempt is older than the window is expired and is
// treated as absent. Every method holds one mutex for its whole
// check-then-act sequence.
type AttemptLimiter struct {
	mu      sync.Mutex
	config  AttemptConfig
	records map[string]*attemptRecord
}

// NewAttemptLimiter returns an empty limiter with cfg's zero fields
// defaulted.
func NewAttemptLimiter(cfg AttemptConfig) *AttemptLimiter {
	return &AttemptLimiter{
		config:  cfg.withDefaults(),
		records: make(map[string]*attemptRecord),
	}
}

// IsBlocked reports whether id has reached MaxAttempts within the window.
// An expired record is evicted as a side effect; nothing else is mutated.
func (l *AttemptLimiter) IsBlocked(id string) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return false
	}
	if l.expired(rec, l.config.Now()) {
		delete(l.records, id)
		return false
	}
	return rec.count >= l.config.MaxAttempts
}

// RecordAttempt registers one failed attempt for id. It is meant to be called
// after a failed credential check only.
func (l *AttemptLimiter) RecordAttempt(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.config.Now()
	rec, ok := l.records[id]
	if !ok || l.expired(rec, now) {
		l.records[id] = &attemptRecord{count: 1, last: now}
		return
	}
	rec.count++
	rec.last = now
}

// RemainingTime returns how long until the record for id leaves the window,
// or zero when there is no record.
func (l *AttemptLimiter) RemainingTime(id string) time.Duration {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return 0
	}
	remaining := l.config.Window - l.config.Now().Sub(rec.last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Attempts returns the live failure count for id (zero when absent or expired).
func (l *AttemptLimiter) Attempts(id string) int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok || l.expired(rec, l.config.Now()) {
		return 0
	}
	return rec.count
}

// Reset forgets id entirely.
func (l *AttemptLimiter) Reset(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.records, id)
	l.mu.Unlock()
}

// Prune evicts every expired record and returns how many were removed.
func (l *AttemptLimiter) Prune() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.config.Now()
	removed := 0
	for id, rec := range l.records {
		if l.expired(rec, now) {
			delete(l.records, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored records, expired or not.
func (l *AttemptLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Config returns the effective configuration.
func (l *AttemptLimiter) Config() AttemptConfig {
	return l.config
}

func (l *AttemptLimiter) expired(rec *attemptRecord, now time.Time) bool {
	return now.Sub(rec.last) > l.config.Window
}

// RemainingMinutes rounds d up to whole minutes for "try again in N minutes"
// messages.
func RemainingMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(time.Minute)))
}
