// Package authshield provides the abuse-mitigation core of a login and signup
// flow: a password strength scorer and a login attempt limiter, plus an
// [Engine] that uses them around a pluggable user directory and an opaque
// token store.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. Call [Engine.Close] to stop the
// limiter janitor and flush audit events.
//
// # Architecture boundaries
//
// authshield is the public surface. It exposes [Engine], [Builder], [Config]
// and value types (User, AuthResponse, MetricsSnapshot). Flow orchestration,
// the limiters, audit dispatch and metric storage live under internal/.
//
// # Security posture
//
// The attempt limiter shapes user experience; it is not a security boundary.
// A client that discards its state, or rotates identifiers, escapes it. Real
// enforcement has to happen where credentials are actually verified. Tokens
// issued here are opaque random strings, not signed credentials.
//
// # What this package must NOT do
//
//   - Log or audit passwords or password hashes.
//   - Expose Redis clients or internal stores in its public API.
//   - Keep package-level mutable state. Every limiter and store is owned by
//     an Engine.
package authshield
