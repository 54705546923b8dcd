// Package audit relays authentication events to pluggable sinks.
//
// # Components
//
//   - [Sink]: event consumer (channel, JSON lines, zap logger, no-op).
//   - [Dispatcher]: buffered async relay that either drops or blocks when full.
//   - [Event]: timestamped record of one login, signup or session operation.
//
// The package owns buffering and delivery only. Which events exist, and when
// they fire, is decided by the engine.
//
// # What this package must NOT do
//
//   - Filter events based on business rules.
//   - Import authshield or any sibling internal package.
package audit
