package engine

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/collabmesh/collabmesh/analytics"
	"github.com/collabmesh/collabmesh/broadcast"
	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/eventlog"
	"github.com/collabmesh/collabmesh/logging"
	"github.com/collabmesh/collabmesh/registry"
	"github.com/collabmesh/collabmesh/transform"
)

// StateWindowSize is the number of trailing events returned in a session
// state snapshot.
const StateWindowSize = 50

// Config defines tuning parameters for the engine's operational behavior.
type Config struct {
	// TransformWindow bounds the lookback used when adjusting concurrent
	// operations.
	TransformWindow int

	// BroadcastBufferSize sets each session's outbound queue capacity. When a
	// session's queue is full (deliveries badly backlogged), new messages are
	// dropped with a warning rather than stalling edits.
	BroadcastBufferSize int
}

// DefaultConfig provides production-ready defaults.
var DefaultConfig = Config{
	TransformWindow:     transform.DefaultWindowSize,
	BroadcastBufferSize: 256,
}

// Options configures a Collab instance using the functional options pattern.
// All services have in-memory defaults so the zero configuration is ready for
// development and tests; production deployments typically supply a structured
// logger and tuned retention.
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// Registry manages sessions and participant sets.
	// Defaults to an in-memory implementation if not provided.
	Registry core.SessionRegistry

	// EventLog stores each session's ordered event history.
	// Defaults to an in-memory implementation if not provided.
	EventLog core.EventLog

	// Hub fans events out to live subscriber channels.
	// Defaults to an in-process hub if not provided.
	Hub core.Broadcaster

	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger

	// Clock supplies the current time for analytics. Defaults to time.Now;
	// override in tests for deterministic durations.
	Clock func() time.Time
}

// WithConfig overrides the operational configuration.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithRegistry overrides the session registry backend.
func WithRegistry(r core.SessionRegistry) func(o *Options) {
	return func(o *Options) { o.Registry = r }
}

// WithEventLog overrides the event log backend.
func WithEventLog(l core.EventLog) func(o *Options) {
	return func(o *Options) { o.EventLog = l }
}

// WithHub overrides the broadcaster.
func WithHub(h core.Broadcaster) func(o *Options) {
	return func(o *Options) { o.Hub = h }
}

// WithTransformWindow overrides the transform lookback window.
func WithTransformWindow(n int) func(o *Options) {
	return func(o *Options) { o.Config.TransformWindow = n }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithClock overrides the time source used for analytics.
func WithClock(clock func() time.Time) func(o *Options) {
	return func(o *Options) { o.Clock = clock }
}

// outbound is one queued broadcast: the serialized message plus the user
// whose own channel is skipped.
type outbound struct {
	message []byte
	exclude string
}

// sessionQueue holds a session's mutation mutex and its outbound delivery
// queue. The mutex serializes participant mutations, log appends and
// transform read-then-append sequences; the queue preserves append order for
// deliveries without ever holding the mutex during a send.
type sessionQueue struct {
	mu   sync.Mutex
	out  chan outbound
	once sync.Once
}

// Collab coordinates the collaboration engine: session registry, event log,
// transform engine and broadcast hub. It is safe for concurrent use; all
// mutations of one session are serialized through a per-session mutex while
// different sessions proceed fully independently.
type Collab struct {
	registry    core.SessionRegistry
	log         core.EventLog
	hub         core.Broadcaster
	transformer *transform.Engine
	logger      logging.Logger
	clock       func() time.Time
	config      Config

	mu       sync.Mutex
	sessions map[string]*sessionQueue

	deliveries sync.WaitGroup
}

// New creates a Collab engine. Unset services default to in-memory
// implementations, making the zero configuration immediately usable:
//
//	collab := engine.New()
//	sess := collab.CreateSession("mockup-1", "alice", "")
func New(optFns ...func(o *Options)) *Collab {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = registry.NewInMemoryRegistry()
	}
	if opts.EventLog == nil {
		opts.EventLog = eventlog.NewInMemoryLog()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Hub == nil {
		opts.Hub = broadcast.NewHub(broadcast.WithLogger(opts.Logger))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Config.TransformWindow <= 0 {
		opts.Config.TransformWindow = transform.DefaultWindowSize
	}
	if opts.Config.BroadcastBufferSize <= 0 {
		opts.Config.BroadcastBufferSize = DefaultConfig.BroadcastBufferSize
	}
	return &Collab{
		registry: opts.Registry,
		log:      opts.EventLog,
		hub:      opts.Hub,
		transformer: transform.New(opts.EventLog,
			transform.WithWindowSize(opts.Config.TransformWindow),
			transform.WithLogger(opts.Logger),
		),
		logger:   opts.Logger,
		clock:    opts.Clock,
		config:   opts.Config,
		sessions: make(map[string]*sessionQueue),
	}
}

// queue returns the session's lock/queue pair, creating it on first use.
// Entries are never removed; sessions are never deleted, only deactivated.
func (c *Collab) queue(sessionID string) *sessionQueue {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.sessions[sessionID]
	if !ok {
		q = &sessionQueue{out: make(chan outbound, c.config.BroadcastBufferSize)}
		c.sessions[sessionID] = q
	}
	return q
}

// CreateSession allocates a new active session for the mockup with
// participant set {createdBy}. It always succeeds.
func (c *Collab) CreateSession(mockupID, createdBy, name string) *core.Session {
	sess := c.registry.Create(mockupID, createdBy, name)
	c.logger.Info("session created",
		"session_id", sess.ID,
		"mockup_id", mockupID,
		"created_by", createdBy,
	)
	return sess
}

// JoinSession adds the user to the session's participants, records a
// user_joined event and broadcasts it to the participants' channels. It
// returns false if the session does not exist or is inactive. Joining twice
// is a no-op beyond re-adding to a set.
func (c *Collab) JoinSession(sessionID, userID string) bool {
	q := c.queue(sessionID)
	q.mu.Lock()

	if err := c.registry.Join(sessionID, userID); err != nil {
		q.mu.Unlock()
		c.logger.Debug("join rejected", "session_id", sessionID, "user_id", userID, "reason", err.Error())
		return false
	}
	sess, err := c.registry.Get(sessionID)
	if err != nil {
		q.mu.Unlock()
		return false
	}
	participants := sess.ParticipantList()
	ev := core.NewEvent(sessionID, userID, core.KindUserJoined, participantsPayload(participants))
	c.log.Append(ev)
	c.enqueueLocked(q, sessionID, presenceMessage(core.KindUserJoined, userID, participants, ev.Timestamp), "")
	q.mu.Unlock()
	return true
}

// LeaveSession removes the user from the session's participants, records a
// user_left event and broadcasts it. When the last participant leaves the
// session transitions to inactive, which is terminal. It returns false only
// if the session id is unknown.
func (c *Collab) LeaveSession(sessionID, userID string) bool {
	q := c.queue(sessionID)
	q.mu.Lock()

	if err := c.registry.Leave(sessionID, userID); err != nil {
		q.mu.Unlock()
		return false
	}
	sess, err := c.registry.Get(sessionID)
	if err != nil {
		q.mu.Unlock()
		return false
	}
	participants := sess.ParticipantList()
	ev := core.NewEvent(sessionID, userID, core.KindUserLeft, participantsPayload(participants))
	c.log.Append(ev)
	c.enqueueLocked(q, sessionID, presenceMessage(core.KindUserLeft, userID, participants, ev.Timestamp), "")
	q.mu.Unlock()

	if !sess.Active {
		c.logger.Info("session deactivated", "session_id", sessionID)
	}
	return true
}

// SessionState returns a snapshot of the session: the session itself, the
// most recent StateWindowSize events in append order, and the active
// participant count. It returns core.ErrSessionNotFound for unknown ids.
func (c *Collab) SessionState(sessionID string) (core.SessionState, error) {
	sess, err := c.registry.Get(sessionID)
	if err != nil {
		return core.SessionState{}, err
	}
	return core.SessionState{
		Session:            sess,
		RecentEvents:       c.log.Recent(sessionID, StateWindowSize),
		ActiveParticipants: sess.ParticipantCount(),
	}, nil
}

// AddEvent appends a collaboration event to the session's log and
// asynchronously delivers it to every subscribed channel except the author's
// own. It returns core.ErrSessionNotFound for unknown sessions and
// core.ErrSessionInactive for terminated ones; delivery failures never fail
// the call.
func (c *Collab) AddEvent(sessionID, userID string, kind core.EventKind, payload json.RawMessage) (core.Event, error) {
	if !kind.Valid() {
		return core.Event{}, fmt.Errorf("invalid event kind %q", kind)
	}
	q := c.queue(sessionID)
	q.mu.Lock()

	sess, err := c.registry.Get(sessionID)
	if err != nil {
		q.mu.Unlock()
		return core.Event{}, err
	}
	if !sess.Active {
		q.mu.Unlock()
		return core.Event{}, core.ErrSessionInactive
	}
	ev := core.NewEvent(sessionID, userID, kind, payload)
	c.log.Append(ev)
	c.enqueueLocked(q, sessionID, eventMessage(ev), userID)
	q.mu.Unlock()
	return ev, nil
}

// ApplyOperation transforms an edit operation against concurrent operations
// from other participants, records the adjusted operation as an
// operation-kind event and broadcasts it. The returned payload is the
// causally-adjusted operation the caller should apply locally.
func (c *Collab) ApplyOperation(sessionID, userID string, op json.RawMessage) (json.RawMessage, error) {
	q := c.queue(sessionID)
	q.mu.Lock()

	sess, err := c.registry.Get(sessionID)
	if err != nil {
		q.mu.Unlock()
		return nil, err
	}
	if !sess.Active {
		q.mu.Unlock()
		return nil, core.ErrSessionInactive
	}
	ev := c.transformer.Transform(sessionID, userID, op)
	c.enqueueLocked(q, sessionID, eventMessage(ev), userID)
	q.mu.Unlock()
	return ev.Payload, nil
}

// UserSessions returns the active sessions the user participates in.
func (c *Collab) UserSessions(userID string) []*core.Session {
	return c.registry.UserSessions(userID)
}

// SessionAnalytics derives activity statistics for the session. Unknown
// sessions yield zero-value stats rather than an error; this is an
// informational endpoint, not a correctness-critical path.
func (c *Collab) SessionAnalytics(sessionID string) analytics.Stats {
	sess, err := c.registry.Get(sessionID)
	if err != nil {
		return analytics.Stats{}
	}
	return analytics.Compute(sess, c.log.All(sessionID), c.clock())
}

// Subscribe registers a live channel for broadcast delivery on the session.
func (c *Collab) Subscribe(sessionID, userID string, ch core.Channel) {
	c.hub.Subscribe(sessionID, userID, ch)
}

// Unsubscribe removes a previously registered channel.
func (c *Collab) Unsubscribe(sessionID string, ch core.Channel) {
	c.hub.Unsubscribe(sessionID, ch)
}

// Flush blocks until every queued broadcast has been delivered. Useful
// before shutdown and in tests asserting on delivered messages.
func (c *Collab) Flush() {
	c.deliveries.Wait()
}

// enqueueLocked queues a broadcast on the session's outbound channel and
// lazily starts its delivery worker. Enqueueing under the session mutex
// preserves append order; the worker drains sequentially off the lock, so a
// slow subscriber delays later deliveries for its session but never blocks
// new edits. A full queue drops the message rather than stalling.
func (c *Collab) enqueueLocked(q *sessionQueue, sessionID string, message []byte, excludeUser string) {
	q.once.Do(func() {
		go func() {
			for msg := range q.out {
				c.hub.Broadcast(sessionID, msg.message, msg.exclude)
				c.deliveries.Done()
			}
		}()
	})
	c.deliveries.Add(1)
	select {
	case q.out <- outbound{message: message, exclude: excludeUser}:
	default:
		c.deliveries.Done()
		c.logger.Warn("broadcast queue full, dropping message", "session_id", sessionID)
	}
}
