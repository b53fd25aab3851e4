package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/collabmesh/collabmesh/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Example:
//
//	ev := NewEventBuilder().Session("s1").User("alice").Cursor(12).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EventBuilder struct {
	id        string
	sessionID string
	userID    string
	kind      core.EventKind
	payload   json.RawMessage
	timestamp *time.Time
}

// NewEventBuilder creates a builder with default session "s1", user "alice"
// and kind cursor.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{sessionID: "s1", userID: "alice", kind: core.KindCursor}
}

// ID overrides the auto-generated event ID (chainable). Use mainly in tests
// where determinism matters.
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

// Session sets the session the event belongs to (chainable).
func (b *EventBuilder) Session(sessionID string) *EventBuilder { b.sessionID = sessionID; return b }

// User sets the authoring user (chainable).
func (b *EventBuilder) User(userID string) *EventBuilder { b.userID = userID; return b }

// Kind sets the event kind (chainable).
func (b *EventBuilder) Kind(k core.EventKind) *EventBuilder { b.kind = k; return b }

// Payload sets a raw JSON payload (chainable).
func (b *EventBuilder) Payload(raw string) *EventBuilder {
	b.payload = json.RawMessage(raw)
	return b
}

// Cursor sets kind to cursor with a position payload (chainable).
func (b *EventBuilder) Cursor(position int) *EventBuilder {
	b.kind = core.KindCursor
	b.payload = json.RawMessage(fmt.Sprintf(`{"position":%d}`, position))
	return b
}

// Insert sets kind to operation with an insert payload (chainable).
func (b *EventBuilder) Insert(position int, text string) *EventBuilder {
	b.kind = core.KindOperation
	b.payload = core.NewInsert(position, text).Payload()
	return b
}

// Delete sets kind to operation with a delete payload (chainable).
func (b *EventBuilder) Delete(position, length int) *EventBuilder {
	b.kind = core.KindOperation
	b.payload = core.NewDelete(position, length).Payload()
	return b
}

// At pins the event timestamp (chainable).
func (b *EventBuilder) At(ts time.Time) *EventBuilder { b.timestamp = &ts; return b }

// Build constructs the core.Event value.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.sessionID, b.userID, b.kind, b.payload)
	if b.id != "" {
		ev.ID = b.id
	}
	if b.timestamp != nil {
		ev.Timestamp = *b.timestamp
	}
	return ev
}
