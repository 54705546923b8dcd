// Package cmd holds the authshield command tree.
//
//	authshield strength <password>   score a password
//	authshield serve                 run the HTTP API
//	authshield loadtest              stress the attempt limiter
//	authshield version
//
// Every command reads the same config as the library: an optional file given
// with --config, overridden by AUTHSHIELD_* environment variables.
package cmd
