package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrAttemptsUnavailable wraps every Redis failure of RedisAttemptLimiter.
	ErrAttemptsUnavailable = errors.New("attempt limiter backend unavailable")
)

const defaultAttemptPrefix = "asla"

// KEYS[1] record hash; ARGV: now ms, window ms.
var recordAttemptScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local count = 1
local last = tonumber(redis.call("HGET", key, "last"))
if last ~= nil and (now - last) <= window then
    count = (tonumber(redis.call("HGET", key, "count")) or 0) + 1
end

redis.call("HSET", key, "count", count, "last", now)
redis.call("PEXPIRE", key, window)
return count
`)

// KEYS[1] record hash; ARGV: now ms, window ms, max attempts.
var isBlockedScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

local last = tonumber(redis.call("HGET", key, "last"))
if last == nil then
    return 0
end
if (now - last) > window then
    redis.call("DEL", key)
    return 0
end

local count = tonumber(redis.call("HGET", key, "count")) or 0
if count >= max then
    return 1
end
return 0
`)

// RedisAttemptLimiter has the same semantics as AttemptLimiter but keeps one
// hash {count, last} per identifier in Redis so several processes share the
// counts. The caller's clock is passed into the scripts; PEXPIRE only
// reclaims memory and never decides expiry on its own.
type RedisAttemptLimiter struct {
	redis  redis.UniversalClient
	config AttemptConfig
	prefix string
}

// NewRedisAttemptLimiter stores records under prefix, "asla" when empty.
// A nil client yields an inert limiter that never blocks.
func NewRedisAttemptLimiter(redisClient redis.UniversalClient, prefix string, cfg AttemptConfig) *RedisAttemptLimiter {
	if prefix == "" {
		prefix = defaultAttemptPrefix
	}
	return &RedisAttemptLimiter{
		redis:  redisClient,
		config: cfg.withDefaults(),
		prefix: prefix,
	}
}

func (l *RedisAttemptLimiter) key(id string) string {
	return l.prefix + ":" + id
}

// IsBlocked reports whether id has reached MaxAttempts within the window and
// deletes an expired record.
func (l *RedisAttemptLimiter) IsBlocked(ctx context.Context, id string) (bool, error) {
	if l == nil || l.redis == nil {
		return false, nil
	}
	blocked, err := isBlockedScript.Run(ctx, l.redis, []string{l.key(id)},
		l.config.Now().UnixMilli(), l.config.Window.Milliseconds(), l.config.MaxAttempts,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAttemptsUnavailable, err)
	}
	return blocked == 1, nil
}

// RecordAttempt registers a failure and returns the updated count.
func (l *RedisAttemptLimiter) RecordAttempt(ctx context.Context, id string) (int, error) {
	if l == nil || l.redis == nil {
		return 0, nil
	}
	count, err := recordAttemptScript.Run(ctx, l.redis, []string{l.key(id)},
		l.config.Now().UnixMilli(), l.config.Window.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrAttemptsUnavailable, err)
	}
	return int(count), nil
}

// RemainingTime returns how long until id's record leaves the window, zero
// when there is none.
func (l *RedisAttemptLimiter) RemainingTime(ctx context.Context, id string) (time.Duration, error) {
	if l == nil || l.redis == nil {
		return 0, nil
	}
	last, err := l.redis.HGet(ctx, l.key(id), "last").Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrAttemptsUnavailable, err)
	}

	elapsed := time.Duration(l.config.Now().UnixMilli()-last) * time.Millisecond
	remaining := l.config.Window - elapsed
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Reset deletes id's record.
func (l *RedisAttemptLimiter) Reset(ctx context.Context, id string) error {
	if l == nil || l.redis == nil {
		return nil
	}
	if err := l.redis.Del(ctx, l.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAttemptsUnavailable, err)
	}
	return nil
}

// Config returns the effective configuration.
func (l *RedisAttemptLimiter) Config() AttemptConfig {
	return l.config
}
