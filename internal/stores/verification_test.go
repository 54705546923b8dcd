package stores

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type verificationStore interface {
	Save(ctx context.Context, token string, rec VerificationRecord, ttl time.Duration) error
	Consume(ctx context.Context, token string, now time.Time) (VerificationRecord, error)
	Pending(ctx context.Context, email string, now time.Time) (string, bool, error)
}

var base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newRedisStore(t *testing.T) (*RedisVerificationStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisVerificationStore(rdb, ""), mr
}

func eachStore(t *testing.T, fn func(t *testing.T, s verificationStore)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryVerificationStore()) })
	t.Run("redis", func(t *testing.T) {
		s, _ := newRedisStore(t)
		fn(t, s)
	})
}

func TestVerificationConsumeOnce(t *testing.T) {
	eachStore(t, func(t *testing.T, s verificationStore) {
		ctx := context.Background()
		rec := VerificationRecord{Email: "a@b.com", ExpiresAt: base.Add(time.Hour)}
		if err := s.Save(ctx, "tok-1", rec, time.Hour); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		token, ok, err := s.Pending(ctx, "a@b.com", base)
		if err != nil || !ok || token != "tok-1" {
			t.Fatalf("Pending = %q %v %v", token, ok, err)
		}

		got, err := s.Consume(ctx, "tok-1", base)
		if err != nil || got.Email != "a@b.com" {
			t.Fatalf("Consume = %+v, %v", got, err)
		}
		if _, err := s.Consume(ctx, "tok-1", base); !errors.Is(err, ErrVerificationNotFound) {
			t.Fatalf("second Consume must fail, got %v", err)
		}
		if _, ok, _ := s.Pending(ctx, "a@b.com", base); ok {
			t.Fatal("pending token must be gone after consume")
		}
	})
}

func TestVerificationExpiry(t *testing.T) {
	eachStore(t, func(t *testing.T, s verificationStore) {
		ctx := context.Background()
		rec := VerificationRecord{Email: "late@b.com", ExpiresAt: base.Add(time.Minute)}
		if err := s.Save(ctx, "tok-late", rec, time.Minute); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		later := base.Add(2 * time.Minute)
		if _, ok, _ := s.Pending(ctx, "late@b.com", later); ok {
			t.Fatal("expired token must not be pending")
		}
		if _, err := s.Consume(ctx, "tok-late", later); !errors.Is(err, ErrVerificationNotFound) {
			t.Fatalf("expected ErrVerificationNotFound, got %v", err)
		}
	})
}

func TestVerificationUnknownToken(t *testing.T) {
	eachStore(t, func(t *testing.T, s verificationStore) {
		if _, err := s.Consume(context.Background(), "nope", base); !errors.Is(err, ErrVerificationNotFound) {
			t.Fatalf("expected ErrVerificationNotFound, got %v", err)
		}
	})
}

func TestVerificationConcurrentConsume(t *testing.T) {
	eachStore(t, func(t *testing.T, s verificationStore) {
		ctx := context.Background()
		if err := s.Save(ctx, "race", VerificationRecord{Email: "r@b.com", ExpiresAt: base.Add(time.Hour)}, time.Hour); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Consume(ctx, "race", base); err == nil {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()
		if wins != 1 {
			t.Fatalf("expected exactly one successful consume, got %d", wins)
		}
	})
}

func TestRedisVerificationKeysAreHashed(t *testing.T) {
	s, mr := newRedisStore(t)
	if err := s.Save(context.Background(), "secret-token", VerificationRecord{Email: "h@b.com", ExpiresAt: base.Add(time.Hour)}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	for _, key := range mr.Keys() {
		if key == "asv:t:secret-token" {
			t.Fatal("raw token used as key")
		}
	}
	if ttl := mr.TTL(s.recordKey("secret-token")); ttl != time.Hour {
		t.Fatalf("expected 1h TTL, got %v", ttl)
	}
}

func TestRedisVerificationUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	s := NewRedisVerificationStore(rdb, "")
	mr.Close()

	err = s.Save(context.Background(), "t", VerificationRecord{Email: "x", ExpiresAt: base}, time.Minute)
	if !errors.Is(err, ErrVerificationUnavailable) {
		t.Fatalf("expected ErrVerificationUnavailable, got %v", err)
	}
}
