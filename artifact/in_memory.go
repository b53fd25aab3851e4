package artifact

import (
	"sort"
	"sync"

	"github.com/collabmesh/collabmesh/core"
)

// InMemoryStore is a trivial in-process MockupStore implementation useful
// for tests, examples and single-process prototypes. It keeps all mockups in
// a map guarded by an RWMutex. Records are copied on save / retrieval to
// avoid accidental external mutation of stored state.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For production, prefer a durable
// implementation (e.g. S3 / GCS / database) that can scale and survive process
// restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	mockups map[string]core.Mockup
}

// Interface compliance (compile-time assertion)
var _ core.MockupStore = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty in-memory mockup store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{mockups: make(map[string]core.Mockup)}
}

// Save stores (or overwrites) the mockup under its id. The record is copied
// before storage.
func (a *InMemoryStore) Save(m core.Mockup) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mockups[m.ID] = cloneMockup(m)
	return nil
}

// Get returns a copy of the stored mockup or ErrNotFound.
func (a *InMemoryStore) Get(mockupID string) (core.Mockup, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.mockups[mockupID]
	if !ok {
		return core.Mockup{}, ErrNotFound
	}
	return cloneMockup(m), nil
}

// List returns a listing view of every stored mockup, newest first. The slice
// is a snapshot and safe for caller mutation.
func (a *InMemoryStore) List() ([]core.MockupInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	infos := make([]core.MockupInfo, 0, len(a.mockups))
	for _, m := range a.mockups {
		infos = append(infos, core.MockupInfo{
			ID:          m.ID,
			Prompt:      m.Prompt,
			GeneratedAt: m.GeneratedAt,
			Status:      m.Status,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].GeneratedAt.Equal(infos[j].GeneratedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].GeneratedAt.After(infos[j].GeneratedAt)
	})
	return infos, nil
}

// Delete removes the mockup if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(mockupID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.mockups[mockupID]; !ok {
		return ErrNotFound
	}
	delete(a.mockups, mockupID)
	return nil
}

func cloneMockup(m core.Mockup) core.Mockup {
	cp := m
	if m.Requirements != nil {
		cp.Requirements = make(map[string]any, len(m.Requirements))
		for k, v := range m.Requirements {
			cp.Requirements[k] = v
		}
	}
	if m.Metadata != nil {
		cp.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}
