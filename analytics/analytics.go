// Package analytics derives informational statistics from a session's event
// log. Results are advisory: they are computed from retained history and are
// never on a correctness-critical path.
package analytics

import (
	"time"

	"github.com/collabmesh/collabmesh/core"
)

// Stats summarizes a collaboration session's activity.
type Stats struct {
	TotalEvents       int                    `json:"total_events"`
	ParticipantsCount int                    `json:"participants_count"`
	DurationMinutes   float64                `json:"duration_minutes"`
	EventsByKind      map[core.EventKind]int `json:"events_by_kind"`
	MostActiveUser    string                 `json:"most_active_user,omitempty"`
}

// Compute derives stats for a session from its retained events. The most
// active user is the author with the most events; ties break in favor of the
// first author to reach that count in log order.
func Compute(session *core.Session, events []core.Event, now time.Time) Stats {
	return Stats{
		TotalEvents:       len(events),
		ParticipantsCount: session.ParticipantCount(),
		DurationMinutes:   now.Sub(session.CreatedAt).Minutes(),
		EventsByKind:      countByKind(events),
		MostActiveUser:    mostActiveUser(events),
	}
}

func countByKind(events []core.Event) map[core.EventKind]int {
	counts := make(map[core.EventKind]int)
	for _, ev := range events {
		counts[ev.Kind]++
	}
	return counts
}

func mostActiveUser(events []core.Event) string {
	if len(events) == 0 {
		return ""
	}
	counts := make(map[string]int)
	order := make([]string, 0, 4)
	for _, ev := range events {
		if _, seen := counts[ev.UserID]; !seen {
			order = append(order, ev.UserID)
		}
		counts[ev.UserID]++
	}
	best := ""
	bestCount := 0
	for _, userID := range order {
		if counts[userID] > bestCount {
			best = userID
			bestCount = counts[userID]
		}
	}
	return best
}
