package eventlog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabmesh/collabmesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.EventLog = (*InMemoryLog)(nil)

func appendN(l *InMemoryLog, sessionID string, n int) []core.Event {
	events := make([]core.Event, 0, n)
	for i := 0; i < n; i++ {
		ev := core.NewEvent(sessionID, fmt.Sprintf("user-%d", i%3), core.KindCursor, nil)
		l.Append(ev)
		events = append(events, ev)
	}
	return events
}

func TestInMemoryLog_AppendOnly(t *testing.T) {
	l := NewInMemoryLog()
	appendN(l, "s1", 3)
	before := l.All("s1")

	ev := core.NewEvent("s1", "alice", core.KindComment, nil)
	l.Append(ev)

	require.Equal(t, 4, l.Len("s1"), "append should grow the log by exactly 1")
	after := l.All("s1")
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID, "prior events must be unchanged")
	}
	assert.Equal(t, ev.ID, after[3].ID)
}

func TestInMemoryLog_RecentWindow(t *testing.T) {
	l := NewInMemoryLog()
	events := appendN(l, "s1", 60)

	recent := l.Recent("s1", 50)
	require.Len(t, recent, 50)
	assert.Equal(t, events[10].ID, recent[0].ID, "window should be the tail in append order")
	assert.Equal(t, events[59].ID, recent[49].ID)

	assert.Len(t, l.Recent("s1", 100), 60, "window larger than log returns everything")
	assert.Empty(t, l.Recent("s1", 0))
	assert.Empty(t, l.Recent("unknown", 50))
}

func TestInMemoryLog_SessionsIndependent(t *testing.T) {
	l := NewInMemoryLog()
	appendN(l, "s1", 5)
	appendN(l, "s2", 2)
	assert.Equal(t, 5, l.Len("s1"))
	assert.Equal(t, 2, l.Len("s2"))
}

func TestInMemoryLog_RetentionRing(t *testing.T) {
	l := NewInMemoryLog(WithMaxEventsPerSession(10))
	events := appendN(l, "s1", 25)

	require.Equal(t, 10, l.Len("s1"))
	all := l.All("s1")
	assert.Equal(t, events[15].ID, all[0].ID, "oldest events drop from the head")
	assert.Equal(t, events[24].ID, all[9].ID, "tail is preserved intact")

	recent := l.Recent("s1", 5)
	assert.Equal(t, events[20].ID, recent[0].ID, "tail windows unaffected by truncation")
}

func TestInMemoryLog_ReadsAreCopies(t *testing.T) {
	l := NewInMemoryLog()
	appendN(l, "s1", 2)
	all := l.All("s1")
	all[0].UserID = "changed"
	assert.NotEqual(t, "changed", l.All("s1")[0].UserID)
}

func TestInMemoryLog_Concurrency(t *testing.T) {
	l := NewInMemoryLog()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Append(core.NewEvent("s1", "alice", core.KindCursor, nil))
			_ = l.Recent("s1", 10)
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, l.Len("s1"))
}
