// Package internal contains the core implementation packages for uiforge.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the uiforge CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Chat entries, versions and the generation wire format
//   - history: Append-only version store and chat timeline
//   - kv: Key-value storage drivers (memory, file, sqlite, redis)
//   - workspace: Persists and restores history through a kv store
//   - generator: Clients for the generation backend (HTTP, OpenAI)
//   - markup: Tokenizer and parser for component markup
//   - registry: The fixed component catalog and prop schemas
//   - interpreter: Resolves markup against the catalog into a tree
//   - renderer: Preview and source views with a render boundary
//   - orchestrator: Submission lifecycle, rollback and clear
//   - websocket: Broadcast hub for live page updates
//   - server: HTTP API, workspace page and middleware
//   - config: Configuration management with validation
//   - logging: Structured logging on log/slog
//   - errors: Typed errors with user-facing messages
//   - version: Build metadata
//
// # Inter-Package Communication
//
//   - The orchestrator is the only writer of history; everything else reads snapshots
//   - The server subscribes to orchestrator events and forwards them to the websocket hub
//   - The renderer only reads code and never touches history
//   - Workspace writes go through kv batches so versions and index stay consistent
package internal
