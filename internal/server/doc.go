// Package server exposes an Engine over HTTP with a chi router.
//
// Routes that touch per-client token state run behind
// middleware.ClientContext; /login additionally runs behind
// middleware.LoginThrottle so blocked identifiers are answered with 429
// before any credential work happens.
package server
