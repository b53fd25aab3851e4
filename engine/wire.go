package engine

import (
	"encoding/json"
	"time"

	"github.com/collabmesh/collabmesh/core"
)

// presenceEnvelope is the wire shape for user_joined and user_left
// notifications. Clients use the participants roster to reconcile presence
// without replaying the log.
type presenceEnvelope struct {
	Type         core.EventKind `json:"type"`
	UserID       string         `json:"user_id"`
	Participants []string       `json:"participants"`
	Timestamp    float64        `json:"timestamp"`
}

// eventEnvelope wraps a collaboration event for delivery to subscribers.
type eventEnvelope struct {
	Type  string     `json:"type"`
	Event core.Event `json:"event"`
}

// participantsPayload serializes the roster into an event payload so the log
// records who was present at each membership change.
func participantsPayload(participants []string) json.RawMessage {
	raw, err := json.Marshal(struct {
		Participants []string `json:"participants"`
	}{Participants: participants})
	if err != nil {
		return json.RawMessage(`{"participants":[]}`)
	}
	return raw
}

// presenceMessage builds the broadcast frame for a membership change.
func presenceMessage(kind core.EventKind, userID string, participants []string, ts time.Time) []byte {
	if participants == nil {
		participants = []string{}
	}
	raw, err := json.Marshal(presenceEnvelope{
		Type:         kind,
		UserID:       userID,
		Participants: participants,
		Timestamp:    float64(ts.UnixNano()) / 1e9,
	})
	if err != nil {
		return nil
	}
	return raw
}

// eventMessage builds the broadcast frame carrying a collaboration event.
func eventMessage(ev core.Event) []byte {
	raw, err := json.Marshal(eventEnvelope{Type: "collaboration_event", Event: ev})
	if err != nil {
		return nil
	}
	return raw
}
