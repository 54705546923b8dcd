package authshield

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/authshield/internal/stores"
)

// verificationStore holds outstanding email verification tokens.
type verificationStore interface {
	Save(ctx context.Context, token string, rec stores.VerificationRecord, ttl time.Duration) error
	Consume(ctx context.Context, token string, now time.Time) (stores.VerificationRecord, error)
	Pending(ctx context.Context, email string, now time.Time) (string, bool, error)
}

var (
	_ verificationStore = (*stores.MemoryVerificationStore)(nil)
	_ verificationStore = (*stores.RedisVerificationStore)(nil)
)

// consumeVerification maps store errors onto the public sentinels.
func (e *Engine) consumeVerification(ctx context.Context, token string) (string, error) {
	rec, err := e.verifications.Consume(ctx, token, e.now())
	if err != nil {
		if errors.Is(err, stores.ErrVerificationNotFound) {
			return "", ErrEmailVerificationInvalid
		}
		return "", fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	return rec.Email, nil
}
