package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/internal/testutil"
)

func event(user string, kind core.EventKind) core.Event {
	return testutil.NewEventBuilder().User(user).Kind(kind).Build()
}

func TestCompute_Counts(t *testing.T) {
	sess := testutil.NewSessionBuilder().Participants("bob").Build()

	events := []core.Event{
		event("alice", core.KindCursor),
		event("bob", core.KindOperation),
		event("bob", core.KindCursor),
		event("alice", core.KindComment),
		event("bob", core.KindComment),
	}
	now := sess.CreatedAt.Add(30 * time.Minute)

	stats := Compute(sess, events, now)

	assert.Equal(t, 5, stats.TotalEvents)
	assert.Equal(t, 2, stats.ParticipantsCount)
	assert.InDelta(t, 30.0, stats.DurationMinutes, 0.001)
	assert.Equal(t, 2, stats.EventsByKind[core.KindCursor])
	assert.Equal(t, 2, stats.EventsByKind[core.KindComment])
	assert.Equal(t, 1, stats.EventsByKind[core.KindOperation])
	assert.Equal(t, "bob", stats.MostActiveUser)
}

func TestCompute_MostActiveTieBreaksOnFirstEncountered(t *testing.T) {
	sess := testutil.NewSessionBuilder().Build()
	events := []core.Event{
		event("bob", core.KindCursor),
		event("alice", core.KindCursor),
		event("bob", core.KindCursor),
		event("alice", core.KindCursor),
	}
	stats := Compute(sess, events, time.Now())
	assert.Equal(t, "bob", stats.MostActiveUser)
}

func TestCompute_EmptyLog(t *testing.T) {
	sess := testutil.NewSessionBuilder().Build()
	stats := Compute(sess, nil, sess.CreatedAt)
	assert.Zero(t, stats.TotalEvents)
	assert.Empty(t, stats.MostActiveUser)
	assert.Empty(t, stats.EventsByKind)
	assert.Equal(t, 1, stats.ParticipantsCount)
}
