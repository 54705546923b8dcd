// Package limiters tracks failed login attempts per identifier.
//
// # Limiters
//
//   - [AttemptLimiter]: an in-process map guarded by a mutex.
//   - [RedisAttemptLimiter]: the same record layout in Redis, updated by Lua
//     scripts so concurrent processes cannot lose updates.
//
// Both block an identifier once MaxAttempts failures are recorded with each
// failure less than Window after the previous one. A record whose last
// failure is older than Window is expired: reads treat it as absent and
// IsBlocked deletes it.
//
// These limiters only shape user experience. A client can reset them by
// discarding its state, so they are not a security boundary; real
// enforcement belongs on the server that verifies credentials.
//
// # What this package must NOT do
//
//   - Import authshield or any sibling internal package.
//   - Decide what happens to a blocked caller. Flow functions do that.
package limiters
