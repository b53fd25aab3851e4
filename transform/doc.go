// Package transform implements best-effort operational transformation for
// concurrent edit operations.
//
// Given an edit authored by one user, the engine adjusts its position to
// account for operations other users appended to the session log while the
// edit was being composed. Only a bounded window of the most recent events is
// inspected, which keeps transform cost constant and is an intentional
// latency/correctness trade-off for short bursts of concurrent edits. It is
// not a convergent OT/CRDT algorithm: under arbitrarily delayed or reordered
// delivery it reduces conflicts rather than eliminating them, and delete
// ranges are never split or merged against overlapping concurrent deletes.
package transform
