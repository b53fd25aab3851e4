package core

import "time"

// MockupStatus tracks the lifecycle of a generated mockup.
type MockupStatus string

const (
	// MockupStatusPending marks a mockup whose generation is in flight.
	MockupStatusPending MockupStatus = "pending"
	// MockupStatusComplete marks a fully generated mockup.
	MockupStatusComplete MockupStatus = "complete"
	// MockupStatusFailed marks a mockup whose generation failed.
	MockupStatusFailed MockupStatus = "failed"
)

// Mockup is a generated HTML artifact that collaboration sessions reference
// by id. The collaboration engine never reads HTML content; only the mockup
// generator and request handlers do.
type Mockup struct {
	ID           string            `json:"mockup_id"`
	HTML         string            `json:"html"`
	Prompt       string            `json:"prompt"`
	Requirements map[string]any    `json:"requirements,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Status       MockupStatus      `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// MockupInfo is the listing view of a mockup without its HTML body.
type MockupInfo struct {
	ID          string       `json:"mockup_id"`
	Prompt      string       `json:"prompt"`
	GeneratedAt time.Time    `json:"generated_at"`
	Status      MockupStatus `json:"status"`
}

// MockupStore persists generated mockups. Implementations must be
// thread-safe and must copy records on save/retrieval so callers cannot
// mutate stored state.
type MockupStore interface {
	Save(m Mockup) error
	Get(mockupID string) (Mockup, error)
	List() ([]MockupInfo, error)
	Delete(mockupID string) error
}
