// Package internal holds helpers private to authshield, mainly opaque token
// generation.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - cmd: the authshield command tree
//   - flows: orchestrators behind Engine.Login and Engine.Signup
//   - limiters: failed-login attempt limiters (memory and Redis)
//   - metrics: lock-free counters and latency histograms
//   - server: chi HTTP surface used by `authshield serve`
//   - stores: single-use verification token stores (memory and Redis)
//
// # What this package must NOT do
//
//   - Export types that appear in the public authshield API.
//   - Be imported by any package outside the authshield module.
package internal
