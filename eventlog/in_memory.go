package eventlog

import (
	"sync"

	"github.com/collabmesh/collabmesh/core"
)

// DefaultMaxEventsPerSession bounds per-session retention. Long-lived
// sessions would otherwise grow without limit; 10000 events keeps hours of
// active editing while capping memory.
const DefaultMaxEventsPerSession = 10000

// Options configures an InMemoryLog.
type Options struct {
	// MaxEventsPerSession caps each session's retained history. Zero or
	// negative means unbounded.
	MaxEventsPerSession int
}

// InMemoryLog is a volatile core.EventLog keeping each session's events in an
// append-ordered slice guarded by an RWMutex. Events are treated as immutable
// once appended; reads return copies of the slice (the events themselves are
// values and their payloads must not be mutated by callers).
type InMemoryLog struct {
	mu     sync.RWMutex
	events map[string][]core.Event
	opts   Options
}

// NewInMemoryLog constructs an empty log with default retention.
func NewInMemoryLog(optFns ...func(o *Options)) *InMemoryLog {
	opts := Options{MaxEventsPerSession: DefaultMaxEventsPerSession}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryLog{events: make(map[string][]core.Event), opts: opts}
}

// WithMaxEventsPerSession overrides the per-session retention cap.
func WithMaxEventsPerSession(n int) func(o *Options) {
	return func(o *Options) { o.MaxEventsPerSession = n }
}

// Append adds the event to its session's log, evicting from the head when the
// retention cap is exceeded.
func (l *InMemoryLog) Append(event core.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	log := append(l.events[event.SessionID], event)
	if max := l.opts.MaxEventsPerSession; max > 0 && len(log) > max {
		overflow := len(log) - max
		log = append(log[:0:0], log[overflow:]...)
	}
	l.events[event.SessionID] = log
}

// Recent returns up to n of the most recent events in append order. An
// unknown session yields an empty slice.
func (l *InMemoryLog) Recent(sessionID string, n int) []core.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	log := l.events[sessionID]
	if n > len(log) {
		n = len(log)
	}
	if n <= 0 {
		return []core.Event{}
	}
	res := make([]core.Event, n)
	copy(res, log[len(log)-n:])
	return res
}

// All returns every retained event for the session in append order.
func (l *InMemoryLog) All(sessionID string) []core.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	log := l.events[sessionID]
	res := make([]core.Event, len(log))
	copy(res, log)
	return res
}

// Len returns the number of retained events for the session.
func (l *InMemoryLog) Len(sessionID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events[sessionID])
}
