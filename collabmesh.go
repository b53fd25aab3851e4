// Package collabmesh provides a high-level façade over the collaboration
// engine and the mockup generation pipeline. Most applications interact with
// this package by:
//  1. Creating a CollabMesh via New() (optionally overriding default in-memory services)
//  2. Generating or storing mockups to collaborate on
//  3. Creating sessions, joining users and exchanging events / operations
//
// The façade delegates session and event semantics to engine.Collab while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply durable
// store implementations and a structured logger.
package collabmesh

import (
	"context"
	"encoding/json"

	"github.com/collabmesh/collabmesh/analytics"
	"github.com/collabmesh/collabmesh/artifact"
	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/engine"
	"github.com/collabmesh/collabmesh/logging"
	"github.com/collabmesh/collabmesh/mockup"
	"github.com/collabmesh/collabmesh/model"
)

// Options configures the CollabMesh instance.
type Options struct {
	// Engine configuration (transform window, broadcast buffers)
	EngineConfig engine.Config

	// Stores (defaults to in-memory implementations if not provided)
	Registry    core.SessionRegistry
	EventLog    core.EventLog
	Hub         core.Broadcaster
	MockupStore core.MockupStore

	// Model drives mockup generation. Optional; when nil, GenerateMockup
	// returns an error and the collaboration surface works standalone.
	Model model.Model

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// CollabMesh is the high-level façade aggregating the collaboration engine
// and the mockup pipeline.
type CollabMesh struct {
	opts      Options
	collab    *engine.Collab
	store     core.MockupStore
	generator *mockup.Generator
}

// New creates a new CollabMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *CollabMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		MockupStore:  artifact.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MockupStore == nil {
		opts.MockupStore = artifact.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	collab := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Registry = opts.Registry
		o.EventLog = opts.EventLog
		o.Hub = opts.Hub
		o.Logger = opts.Logger
	})

	m := &CollabMesh{opts: opts, collab: collab, store: opts.MockupStore}
	if opts.Model != nil {
		m.generator = mockup.NewGenerator(opts.Model, opts.MockupStore,
			mockup.WithLogger(opts.Logger))
	}
	return m
}

// GenerateMockup turns a reference screenshot and a natural-language prompt
// into a stored HTML mockup. It requires a model to be configured.
func (m *CollabMesh) GenerateMockup(ctx context.Context, image []byte, prompt string) (core.Mockup, error) {
	if m.generator == nil {
		return core.Mockup{}, core.ErrNoModel
	}
	return m.generator.Generate(ctx, image, prompt)
}

// Mockup returns a stored mockup by id.
func (m *CollabMesh) Mockup(mockupID string) (core.Mockup, error) {
	return m.store.Get(mockupID)
}

// Mockups lists stored mockups without their HTML bodies.
func (m *CollabMesh) Mockups() ([]core.MockupInfo, error) {
	return m.store.List()
}

// DeleteMockup removes a stored mockup. Sessions referencing the id keep
// working; mockup ids are opaque to the collaboration engine.
func (m *CollabMesh) DeleteMockup(mockupID string) error {
	return m.store.Delete(mockupID)
}

// CreateSession starts a collaboration session on a mockup. The creator is
// the first participant.
func (m *CollabMesh) CreateSession(mockupID, createdBy, name string) *core.Session {
	return m.collab.CreateSession(mockupID, createdBy, name)
}

// JoinSession adds a user to a session. It returns false when the session is
// unknown or inactive.
func (m *CollabMesh) JoinSession(sessionID, userID string) bool {
	return m.collab.JoinSession(sessionID, userID)
}

// LeaveSession removes a user from a session. The session deactivates when
// the last participant leaves.
func (m *CollabMesh) LeaveSession(sessionID, userID string) bool {
	return m.collab.LeaveSession(sessionID, userID)
}

// SessionState returns a snapshot of a session with its recent events.
func (m *CollabMesh) SessionState(sessionID string) (core.SessionState, error) {
	return m.collab.SessionState(sessionID)
}

// AddEvent records a collaboration event and fans it out to other
// participants' channels.
func (m *CollabMesh) AddEvent(sessionID, userID string, kind core.EventKind, payload json.RawMessage) (core.Event, error) {
	return m.collab.AddEvent(sessionID, userID, kind, payload)
}

// ApplyOperation transforms an edit operation against concurrent edits,
// records it and returns the adjusted payload.
func (m *CollabMesh) ApplyOperation(sessionID, userID string, op json.RawMessage) (json.RawMessage, error) {
	return m.collab.ApplyOperation(sessionID, userID, op)
}

// UserSessions returns the active sessions the user participates in.
func (m *CollabMesh) UserSessions(userID string) []*core.Session {
	return m.collab.UserSessions(userID)
}

// SessionAnalytics derives activity statistics for a session.
func (m *CollabMesh) SessionAnalytics(sessionID string) analytics.Stats {
	return m.collab.SessionAnalytics(sessionID)
}

// Subscribe registers a live channel for broadcast delivery on a session.
func (m *CollabMesh) Subscribe(sessionID, userID string, ch core.Channel) {
	m.collab.Subscribe(sessionID, userID, ch)
}

// Unsubscribe removes a previously registered channel.
func (m *CollabMesh) Unsubscribe(sessionID string, ch core.Channel) {
	m.collab.Unsubscribe(sessionID, ch)
}

// Flush blocks until every queued broadcast has been delivered.
func (m *CollabMesh) Flush() { m.collab.Flush() }
