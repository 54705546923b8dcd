package authshield

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenSet is what a client keeps after authenticating. Persistent marks the
// "remember me" tier; otherwise the set belongs to the session tier.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Persistent   bool
}

// TokenStore keeps one TokenSet per client key. Tokens returns ok=false
// when the client has nothing stored.
type TokenStore interface {
	SetTokens(ctx context.Context, client string, set TokenSet) error
	Tokens(ctx context.Context, client string) (TokenSet, bool, error)
	Clear(ctx context.Context, client string) error
}

type memoryTokenEntry struct {
	set       TokenSet
	expiresAt time.Time
}

// MemoryTokenStore is an in-process TokenStore. Session-tier sets expire
// after sessionTTL; persistent sets live until cleared.
type MemoryTokenStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryTokenEntry
	sessionTTL time.Duration
	now        func() time.Time
}

// NewMemoryTokenStore returns an empty store. A nil now uses time.Now.
func NewMemoryTokenStore(sessionTTL time.Duration, now func() time.Time) *MemoryTokenStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryTokenStore{
		entries:    make(map[string]memoryTokenEntry),
		sessionTTL: sessionTTL,
		now:        now,
	}
}

func (s *MemoryTokenStore) SetTokens(_ context.Context, client string, set TokenSet) error {
	entry := memoryTokenEntry{set: set}
	if !set.Persistent && s.sessionTTL > 0 {
		entry.expiresAt = s.now().Add(s.sessionTTL)
	}

	s.mu.Lock()
	s.entries[client] = entry
	s.mu.Unlock()
	return nil
}

// Tokens returns the set stored for client. An expired session-tier set is
// evicted; lookup and eviction share one lock so a concurrent SetTokens is
// never lost.
func (s *MemoryTokenStore) Tokens(_ context.Context, client string) (TokenSet, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[client]
	if !ok {
		return TokenSet{}, false, nil
	}
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		delete(s.entries, client)
		return TokenSet{}, false, nil
	}
	return entry.set, true, nil
}

func (s *MemoryTokenStore) Clear(_ context.Context, client string) error {
	s.mu.Lock()
	delete(s.entries, client)
	s.mu.Unlock()
	return nil
}

// RedisTokenStore keeps one hash per client under prefix. Session-tier
// hashes carry a TTL of sessionTTL; persistent hashes have none.
type RedisTokenStore struct {
	redis      redis.UniversalClient
	prefix     string
	sessionTTL time.Duration
}

// NewRedisTokenStore returns a store writing hashes under prefix, "astk"
// when empty.
func NewRedisTokenStore(client redis.UniversalClient, prefix string, sessionTTL time.Duration) *RedisTokenStore {
	if prefix == "" {
		prefix = "astk"
	}
	return &RedisTokenStore{redis: client, prefix: prefix, sessionTTL: sessionTTL}
}

func (s *RedisTokenStore) key(client string) string {
	return s.prefix + ":" + client
}

func (s *RedisTokenStore) SetTokens(ctx context.Context, client string, set TokenSet) error {
	key := s.key(client)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"access", set.AccessToken,
			"refresh", set.RefreshToken,
			"email", set.Email,
			"persistent", strconv.FormatBool(set.Persistent),
		)
		if !set.Persistent && s.sessionTTL > 0 {
			pipe.PExpire(ctx, key, s.sessionTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	return nil
}

func (s *RedisTokenStore) Tokens(ctx context.Context, client string) (TokenSet, bool, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(client)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return TokenSet{}, false, nil
		}
		return TokenSet{}, false, fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return TokenSet{}, false, nil
	}

	persistent, _ := strconv.ParseBool(fields["persistent"])
	return TokenSet{
		AccessToken:  fields["access"],
		RefreshToken: fields["refresh"],
		Email:        fields["email"],
		Persistent:   persistent,
	}, true, nil
}

func (s *RedisTokenStore) Clear(ctx context.Context, client string) error {
	if err := s.redis.Del(ctx, s.key(client)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenStoreUnavailable, err)
	}
	return nil
}
