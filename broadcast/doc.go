// Package broadcast implements core.Broadcaster: per-session fan-out of
// messages to live subscriber channels.
//
// The hub owns no domain state. Subscriptions may be dropped or pruned at any
// time without affecting the event log; a dead channel is detected by a
// failed send, not by timeout, and is removed lazily on that failure. Sends
// happen against a snapshot of the subscription set so a slow or broken
// subscriber can never stall new edits.
package broadcast
