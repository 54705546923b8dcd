// Package flows contains the orchestrators behind Engine.Login and
// Engine.Signup.
//
// Each flow function accepts a typed dependency struct and has no side
// effects beyond those dependencies, so it can be tested with plain
// function fakes and the Engine stays thin.
//
// # Architecture boundaries
//
// Flow functions coordinate the attempt limiter, user directory, password
// hasher, token store, audit dispatcher and metrics. They do NOT own any of
// these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authshield (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency funcs.
package flows
