// Package eventlog implements core.EventLog as an in-memory per-session
// append-only log. Each session's log is totally ordered by append; there is
// no ordering across sessions.
//
// Retention is a bounded ring: once a session's log reaches the configured
// capacity the oldest events are dropped from the head. Callers only ever
// consume recent tail windows (the last-50 state snapshot, the last-10
// transform window), so truncation at the head never affects them. Analytics
// derived from a truncated log cover the retained range only.
package eventlog
