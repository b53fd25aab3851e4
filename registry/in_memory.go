package registry

import (
	"sync"

	"github.com/collabmesh/collabmesh/core"
)

// InMemoryRegistry is a volatile core.SessionRegistry implementation storing
// sessions in process local maps. It is safe for concurrent access and best
// suited for tests or single-process deployments. Each returned session is
// cloned to prevent external mutation of internal state.
//
// The registry is the authoritative owner of participant sets. The reverse
// user->sessions index is derived and updated under the same lock as every
// join/leave so the two can never drift. Sessions are never deleted, only
// deactivated; deactivation is terminal.
type InMemoryRegistry struct {
	mu           sync.RWMutex
	sessions     map[string]*core.Session
	userSessions map[string]map[string]struct{} // userID -> set of sessionIDs
}

// NewInMemoryRegistry constructs an empty in-memory session registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		sessions:     make(map[string]*core.Session),
		userSessions: make(map[string]map[string]struct{}),
	}
}

// Create allocates a new active session with participant set {createdBy}.
// It always succeeds.
func (r *InMemoryRegistry) Create(mockupID, createdBy, name string) *core.Session {
	sess := core.NewSession(core.NewID(), mockupID, createdBy, name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
	r.indexLocked(createdBy, sess.ID)
	return sess.Clone()
}

// Get returns a clone of the session or core.ErrSessionNotFound.
func (r *InMemoryRegistry) Get(sessionID string) (*core.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Join adds the user to the participant set and the reverse index. Joining an
// unknown session returns core.ErrSessionNotFound; joining a terminated one
// returns core.ErrSessionInactive. Joining twice is a no-op.
func (r *InMemoryRegistry) Join(sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	if !sess.AddParticipant(userID) {
		return core.ErrSessionInactive
	}
	r.indexLocked(userID, sessionID)
	return nil
}

// Leave removes the user from the participant set and the reverse index. The
// session transitions to inactive when its last participant leaves. Leaving a
// session the user is not in is a no-op; only an unknown session id fails.
func (r *InMemoryRegistry) Leave(sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	sess.RemoveParticipant(userID)
	if ids, ok := r.userSessions[userID]; ok {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(r.userSessions, userID)
		}
	}
	return nil
}

// UserSessions returns clones of the active sessions the user belongs to.
// The reverse index is a lookup convenience only; activity is re-checked
// against the authoritative session records.
func (r *InMemoryRegistry) UserSessions(userID string) []*core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids, ok := r.userSessions[userID]
	if !ok {
		return []*core.Session{}
	}
	res := make([]*core.Session, 0, len(ids))
	for id := range ids {
		if sess, ok := r.sessions[id]; ok && sess.IsActive() {
			res = append(res, sess.Clone())
		}
	}
	return res
}

// indexLocked records sessionID under userID; caller must hold the write lock.
func (r *InMemoryRegistry) indexLocked(userID, sessionID string) {
	ids, ok := r.userSessions[userID]
	if !ok {
		ids = make(map[string]struct{})
		r.userSessions[userID] = ids
	}
	ids[sessionID] = struct{}{}
}
