package testutil

import (
	"time"

	"github.com/collabmesh/collabmesh/core"
)

// SessionBuilder provides a fluent helper for constructing sessions in tests.
type SessionBuilder struct {
	id           string
	mockupID     string
	name         string
	createdBy    string
	createdAt    *time.Time
	participants []string
	inactive     bool
}

// NewSessionBuilder creates a builder with default id "s1", mockup "m1" and
// creator "alice".
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{id: "s1", mockupID: "m1", createdBy: "alice"}
}

// ID sets the session id (chainable).
func (b *SessionBuilder) ID(id string) *SessionBuilder { b.id = id; return b }

// Mockup sets the mockup id the session collaborates on (chainable).
func (b *SessionBuilder) Mockup(mockupID string) *SessionBuilder { b.mockupID = mockupID; return b }

// Name sets the display name (chainable).
func (b *SessionBuilder) Name(name string) *SessionBuilder { b.name = name; return b }

// CreatedBy sets the creator, who is always a participant (chainable).
func (b *SessionBuilder) CreatedBy(userID string) *SessionBuilder { b.createdBy = userID; return b }

// CreatedAt pins the creation timestamp (chainable).
func (b *SessionBuilder) CreatedAt(ts time.Time) *SessionBuilder { b.createdAt = &ts; return b }

// Participants adds users beyond the creator (chainable).
func (b *SessionBuilder) Participants(userIDs ...string) *SessionBuilder {
	b.participants = append(b.participants, userIDs...)
	return b
}

// Inactive marks the session terminated (chainable).
func (b *SessionBuilder) Inactive() *SessionBuilder { b.inactive = true; return b }

// Build constructs the core.Session value.
func (b *SessionBuilder) Build() *core.Session {
	sess := core.NewSession(b.id, b.mockupID, b.createdBy, b.name)
	if b.createdAt != nil {
		sess.CreatedAt = *b.createdAt
	}
	for _, p := range b.participants {
		sess.AddParticipant(p)
	}
	if b.inactive {
		sess.Active = false
	}
	return sess
}
