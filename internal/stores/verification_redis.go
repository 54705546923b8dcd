package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultVerificationPrefix = "asv"

// consumeVerificationLua atomically reads and deletes a verification record.
// KEYS[1] = record hash
// ARGV[1] = now (unix ms)
//
// Returns the email on success, or an error reply "not_found" / "expired".
var consumeVerificationLua = redis.NewScript(`
local email = redis.call('HGET', KEYS[1], 'email')
if not email then
  return {err='not_found'}
end
local expires = tonumber(redis.call('HGET', KEYS[1], 'expires'))
redis.call('DEL', KEYS[1])
if expires == nil or tonumber(ARGV[1]) > expires then
  return {err='expired'}
end
return email
`)

// RedisVerificationStore keeps one hash {email, expires} per token, keyed by
// the token's SHA-256. Expiry is judged against the caller's clock; the key
// TTL only reclaims memory.
type RedisVerificationStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisVerificationStore(redisClient redis.UniversalClient, prefix string) *RedisVerificationStore {
	if prefix == "" {
		prefix = defaultVerificationPrefix
	}
	return &RedisVerificationStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisVerificationStore) recordKey(token string) string {
	return s.prefix + ":t:" + tokenKey(token)
}

func (s *RedisVerificationStore) pendingKey(email string) string {
	return s.prefix + ":p:" + email
}

// Save stores rec under token. ttl bounds how long Redis keeps the keys.
func (s *RedisVerificationStore) Save(ctx context.Context, token string, rec VerificationRecord, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	recordKey := s.recordKey(token)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, recordKey, "email", rec.Email, "expires", rec.ExpiresAt.UnixMilli())
		pipe.PExpire(ctx, recordKey, ttl)
		pipe.Set(ctx, s.pendingKey(rec.Email), token, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return nil
}

func (s *RedisVerificationStore) Consume(ctx context.Context, token string, now time.Time) (VerificationRecord, error) {
	res, err := consumeVerificationLua.Run(ctx, s.redis, []string{s.recordKey(token)}, now.UnixMilli()).Text()
	if err != nil {
		switch err.Error() {
		case "not_found", "expired":
			return VerificationRecord{}, ErrVerificationNotFound
		default:
			return VerificationRecord{}, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
		}
	}

	pendingKey := s.pendingKey(res)
	if current, err := s.redis.Get(ctx, pendingKey).Result(); err == nil && current == token {
		_ = s.redis.Del(ctx, pendingKey).Err()
	}
	return VerificationRecord{Email: res}, nil
}

func (s *RedisVerificationStore) Pending(ctx context.Context, email string, now time.Time) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.pendingKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	expires, err := s.redis.HGet(ctx, s.recordKey(token), "expires").Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if now.UnixMilli() > expires {
		return "", false, nil
	}
	return token, true, nil
}
