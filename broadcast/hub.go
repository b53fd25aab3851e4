package broadcast

import (
	"sync"

	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/logging"
)

// Options configures a Hub.
type Options struct {
	// Logger receives per-delivery failure records. Defaults to NoOp; failures
	// are never surfaced to event authors regardless.
	Logger logging.Logger
}

// subscription ties a live channel to the user it delivers to, so a user's
// own events can be excluded from fan-out.
type subscription struct {
	userID string
	ch     core.Channel
}

// Hub is an in-process core.Broadcaster keeping per-session subscription
// sets. It is safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string][]subscription // sessionID -> ordered subscriptions
	logger logging.Logger
}

// NewHub constructs an empty hub.
func NewHub(optFns ...func(o *Options)) *Hub {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Hub{subs: make(map[string][]subscription), logger: logger}
}

// WithLogger sets the logger used for delivery failure records.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Subscribe registers a channel for a session tagged with the user it
// delivers to. The same channel may be registered once per session; repeat
// registrations are ignored.
func (h *Hub) Subscribe(sessionID, userID string, ch core.Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[sessionID] {
		if sub.ch == ch {
			return
		}
	}
	h.subs[sessionID] = append(h.subs[sessionID], subscription{userID: userID, ch: ch})
}

// Unsubscribe removes a previously registered channel from the session.
// Unknown channels are ignored.
func (h *Hub) Unsubscribe(sessionID string, ch core.Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sessionID, ch)
}

func (h *Hub) removeLocked(sessionID string, ch core.Channel) {
	subs := h.subs[sessionID]
	for i, sub := range subs {
		if sub.ch == ch {
			h.subs[sessionID] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of live channels on a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// Broadcast delivers the message to every channel subscribed to the session
// except those tagged with excludeUser. A failed send removes that channel
// from the subscription set; it never blocks or fails delivery to the others
// and never surfaces to the caller.
func (h *Hub) Broadcast(sessionID string, message []byte, excludeUser string) {
	h.mu.RLock()
	snapshot := make([]subscription, len(h.subs[sessionID]))
	copy(snapshot, h.subs[sessionID])
	h.mu.RUnlock()

	var dead []core.Channel
	for _, sub := range snapshot {
		if excludeUser != "" && sub.userID == excludeUser {
			continue
		}
		if err := sub.ch.Send(message); err != nil {
			h.logger.Warn("broadcast delivery failed, pruning channel",
				"session_id", sessionID,
				"user_id", sub.userID,
				"error", err.Error(),
			)
			dead = append(dead, sub.ch)
		}
	}

	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, ch := range dead {
		h.removeLocked(sessionID, ch)
	}
	h.mu.Unlock()
}
