// Package middleware adapts authshield.Engine to net/http.
//
//   - [LoginThrottle] answers 429 with Retry-After for blocked identifiers
//     before the login handler runs.
//   - [ClientContext] attaches the caller IP and a cookie-backed client key so
//     each browser gets its own token slot.
//
// # What this package must NOT do
//
//   - Record failed attempts. Only Engine.Login does that.
//   - Access Redis or the limiters directly.
package middleware
