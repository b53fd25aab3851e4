// Package engine implements the orchestration layer for collabmesh.
//
// The Collab engine is the central coordination point that gates every
// operation on session existence and activity, serializes each session's
// mutation path, and wires the component services together:
//
// Core responsibilities:
//   - Session lifecycle: create, join, leave, state snapshots
//   - Event flow: append to the session log, then fan out to subscribers
//   - Operational transform: adjust concurrent edits before recording them
//   - Analytics: derive activity statistics from the event log
//
// Concurrency model:
//   - One mutex per session serializes participant mutations, log appends and
//     transform read-then-append sequences; different sessions proceed
//     independently without coordination
//   - Broadcast delivery runs in its own goroutine and never holds a session
//     lock, so one slow subscriber cannot stall new edits
//   - Per-subscriber delivery failures are logged and resolved by pruning the
//     subscription; they never surface to the event author
//
// The engine owns no ambient global state: construct one per process (or per
// test) with New and the functional options.
package engine
