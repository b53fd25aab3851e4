package core

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Session represents a collaborative editing context tied to one mockup and a
// mutable set of participants. It is safe for concurrent access.
//
// Contract:
//   - Participants is a set: adding a user twice is a no-op
//   - A session with an empty participant set must be inactive
//   - An inactive session is terminal; it accepts no new joins or events
//   - Reads hand out defensive copies so callers never alias internal state.
type Session struct {
	ID           string              `json:"session_id"`
	MockupID     string              `json:"mockup_id"`
	Name         string              `json:"name,omitempty"`
	CreatedBy    string              `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	Participants map[string]struct{} `json:"-"`
	Active       bool                `json:"is_active"`
	mu           sync.RWMutex
}

// NewSession creates an active session whose participant set contains only
// the creator.
func NewSession(id, mockupID, createdBy, name string) *Session {
	return &Session{
		ID:           id,
		MockupID:     mockupID,
		Name:         name,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
		Participants: map[string]struct{}{createdBy: {}},
		Active:       true,
	}
}

// AddParticipant adds a user to the participant set. It returns false without
// mutating anything if the session is inactive.
func (s *Session) AddParticipant(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Active {
		return false
	}
	s.Participants[userID] = struct{}{}
	return true
}

// RemoveParticipant removes a user from the participant set. When the last
// participant leaves the session transitions to inactive; there is no
// transition back.
func (s *Session) RemoveParticipant(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Participants, userID)
	if len(s.Participants) == 0 {
		s.Active = false
	}
}

// HasParticipant reports whether the user is currently in the session.
func (s *Session) HasParticipant(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.Participants[userID]
	return ok
}

// ParticipantCount returns the current participant set size.
func (s *Session) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Participants)
}

// ParticipantList returns the participants as a sorted slice. Sorting keeps
// broadcast payloads and tests deterministic.
func (s *Session) ParticipantList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.participantListLocked()
}

func (s *Session) participantListLocked() []string {
	list := make([]string, 0, len(s.Participants))
	for id := range s.Participants {
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}

// IsActive reports whether the session still accepts joins and events.
func (s *Session) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Active
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:           s.ID,
		MockupID:     s.MockupID,
		Name:         s.Name,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
		Participants: make(map[string]struct{}, len(s.Participants)),
		Active:       s.Active,
	}
	for id := range s.Participants {
		clone.Participants[id] = struct{}{}
	}
	return clone
}

// MarshalJSON renders the participant set as a sorted array so serialized
// sessions are stable across runs.
func (s *Session) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type alias struct {
		ID           string    `json:"session_id"`
		MockupID     string    `json:"mockup_id"`
		Name         string    `json:"name,omitempty"`
		CreatedBy    string    `json:"created_by"`
		CreatedAt    time.Time `json:"created_at"`
		Participants []string  `json:"participants"`
		Active       bool      `json:"is_active"`
	}
	return json.Marshal(alias{
		ID:           s.ID,
		MockupID:     s.MockupID,
		Name:         s.Name,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
		Participants: s.participantListLocked(),
		Active:       s.Active,
	})
}

// SessionState is the snapshot returned to callers attaching to a session:
// the session itself, the most recent window of its event log in append
// order, and the number of active participants.
type SessionState struct {
	Session            *Session `json:"session"`
	RecentEvents       []Event  `json:"recent_events"`
	ActiveParticipants int      `json:"active_participants"`
}

// SessionRegistry creates, tracks and terminates collaboration sessions. It
// is the authoritative owner of participant sets; the reverse user->sessions
// index is derived and must be kept in lock-step with every join/leave.
//
// Implementations must be safe for concurrent use and must only hand out
// clones, never internal state.
type SessionRegistry interface {
	// Create allocates a new active session; it always succeeds.
	Create(mockupID, createdBy, name string) *Session

	// Get returns a clone of the session or ErrSessionNotFound.
	Get(sessionID string) (*Session, error)

	// Join adds the user to the participant set. It returns
	// ErrSessionNotFound for unknown ids and ErrSessionInactive for
	// terminated sessions. Joining twice is a no-op.
	Join(sessionID, userID string) error

	// Leave removes the user; the session deactivates when the last
	// participant leaves. Returns ErrSessionNotFound for unknown ids.
	Leave(sessionID, userID string) error

	// UserSessions returns clones of the active sessions the user belongs to.
	UserSessions(userID string) []*Session
}
