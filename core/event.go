package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventKind is the closed set of collaboration event categories. Consumers
// switch exhaustively over these constants instead of matching free-form
// strings.
type EventKind string

const (
	// KindEditInsert is a text insertion edit.
	KindEditInsert EventKind = "edit_insert"
	// KindEditDelete is a text deletion edit.
	KindEditDelete EventKind = "edit_delete"
	// KindCursor is a cursor position update.
	KindCursor EventKind = "cursor"
	// KindSelection is a selection range update.
	KindSelection EventKind = "selection"
	// KindComment is an annotation attached to the document.
	KindComment EventKind = "comment"
	// KindUserJoined records a participant joining the session.
	KindUserJoined EventKind = "user_joined"
	// KindUserLeft records a participant leaving the session.
	KindUserLeft EventKind = "user_left"
	// KindOperation is a transformed edit operation recorded by the
	// transform engine. Only events of this kind feed future transforms.
	KindOperation EventKind = "operation"
)

// Valid reports whether k is one of the defined event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case KindEditInsert, KindEditDelete, KindCursor, KindSelection,
		KindComment, KindUserJoined, KindUserLeft, KindOperation:
		return true
	}
	return false
}

// Event is an immutable record of something that happened in a session. The
// payload is opaque JSON owned by the author; the engine never interprets it
// except for operation-kind events inside the transform window. Ordering
// within a session is the append order of its event log.
type Event struct {
	ID        string          `json:"event_id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Kind      EventKind       `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates an event with a fresh id and UTC timestamp. The payload is
// stored as given; callers must not mutate it afterwards.
func NewEvent(sessionID, userID string, kind EventKind, payload json.RawMessage) Event {
	return Event{
		ID:        NewID(),
		SessionID: sessionID,
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for sessions, events and mockups.
func NewID() string { return uuid.NewString() }

// IsOperation reports whether the event carries a transformed edit operation.
func (e Event) IsOperation() bool { return e.Kind == KindOperation }

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
// Useful for metrics & numeric serialization paths.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }

// EventLog is the per-session append-only ordered log of collaboration
// events. The append order of a session's log is the single source of truth
// for what happened when; no ordering exists across sessions.
//
// Implementations must be safe for concurrent use and must return copies.
type EventLog interface {
	// Append adds the event to its session's log. Events are immutable once
	// appended and are never moved between sessions.
	Append(event Event)

	// Recent returns up to n of the most recent events in append order.
	Recent(sessionID string, n int) []Event

	// All returns every retained event for the session in append order.
	All(sessionID string) []Event

	// Len returns the number of retained events for the session.
	Len(sessionID string) int
}
