// Package core provides the foundational domain types used by CouchBot. It
// defines the core abstractions for:
//
//   - Messages (immutable conversational records with stable identity)
//   - Candidates (catalog items returned by search or library listing)
//   - Selection references and granular season/episode selections
//   - Workflow contexts (per-user multi-turn selection / deletion state)
//   - Replies (per-turn output: text plus generated images)
//   - The error taxonomy shared by the resilience layer and all handlers
//
// The package intentionally keeps implementation concerns (stores, routing,
// catalog clients, model gateways) out of scope, exposing small value types
// so the orchestration packages can depend on a stable vocabulary.
package core
