package authshield

import (
	"context"
	"time"

	"github.com/MrEthical07/authshield/internal/limiters"
	"go.uber.org/zap"
)

// attemptStore is the Engine's view of a login attempt limiter. The memory
// limiter never fails; the Redis limiter wraps backend errors.
type attemptStore interface {
	IsBlocked(ctx context.Context, id string) (bool, error)
	RecordAttempt(ctx context.Context, id string) error
	RemainingTime(ctx context.Context, id string) (time.Duration, error)
	Reset(ctx context.Context, id string) error
}

type memoryAttemptStore struct {
	limiter *limiters.AttemptLimiter
}

func (s memoryAttemptStore) IsBlocked(_ context.Context, id string) (bool, error) {
	return s.limiter.IsBlocked(id), nil
}

func (s memoryAttemptStore) RecordAttempt(_ context.Context, id string) error {
	s.limiter.RecordAttempt(id)
	return nil
}

func (s memoryAttemptStore) RemainingTime(_ context.Context, id string) (time.Duration, error) {
	return s.limiter.RemainingTime(id), nil
}

func (s memoryAttemptStore) Reset(_ context.Context, id string) error {
	s.limiter.Reset(id)
	return nil
}

type redisAttemptStore struct {
	limiter *limiters.RedisAttemptLimiter
}

func (s redisAttemptStore) IsBlocked(ctx context.Context, id string) (bool, error) {
	return s.limiter.IsBlocked(ctx, id)
}

func (s redisAttemptStore) RecordAttempt(ctx context.Context, id string) error {
	_, err := s.limiter.RecordAttempt(ctx, id)
	return err
}

func (s redisAttemptStore) RemainingTime(ctx context.Context, id string) (time.Duration, error) {
	return s.limiter.RemainingTime(ctx, id)
}

func (s redisAttemptStore) Reset(ctx context.Context, id string) error {
	return s.limiter.Reset(ctx, id)
}

func (e *Engine) runJanitor(l *limiters.AttemptLimiter, interval time.Duration) {
	defer e.janitorWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := l.Prune(); removed > 0 {
				e.metrics.Add(MetricLimiterPruned, removed)
				e.logger.Debug("pruned expired login attempt records",
					zap.Int("removed", removed), zap.Int("remaining", l.Len()))
			}
		case <-e.stopJanitor:
			return
		}
	}
}
