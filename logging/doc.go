// Package logging provides a minimal logging interface and adapters for CouchBot.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the router, resolver and resilience layers use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - CouchBotLogger with contextual helpers and domain-specific logging
//     for model calls, catalog calls and retry attempts
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	bot := couchbot.New(func(o *couchbot.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
