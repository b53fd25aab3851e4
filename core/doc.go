// Package core provides the foundational domain types and interfaces used by
// collabmesh. It defines the core abstractions for:
//
//   - Sessions (bounded collaborative editing contexts with participant sets)
//   - Events (immutable, ordered records of what happened in a session)
//   - Operations (positional edit intents subject to operational transform)
//   - Channels (externally supplied live delivery paths for broadcasts)
//   - Pluggable registries and stores for sessions, event logs and mockups
//
// The package intentionally keeps implementation concerns (in-memory storage,
// fan-out, transform heuristics) out of scope, exposing small interfaces to
// enable custom backends and isolated testing. Higher layers depend on these
// contracts rather than concrete types.
package core
