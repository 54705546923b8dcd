// Package stores holds short-lived, single-use records for authentication
// flows. Today that is email verification tokens.
//
// # Design
//
// Records are keyed by the SHA-256 of their token, never the raw token.
// Consume reads and deletes in one step (a mutex in memory, a Lua script in
// Redis), so a token can be redeemed at most once even under concurrent
// use. Expiry is decided with the caller's clock.
//
// # What this package must NOT do
//
//   - Import authshield or any sibling internal package.
//   - Generate tokens or decide what a verified record means. The Engine
//     does that.
package stores
