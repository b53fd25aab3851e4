package engine

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/collabmesh/collabmesh/core"
)

// recordChannel collects delivered messages for assertions.
type recordChannel struct {
	mu       sync.Mutex
	messages [][]byte
}

func (c *recordChannel) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *recordChannel) all() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *recordChannel) delivered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestCollab_CreateSession(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("mockup-1", "alice", "Homepage review")

	require.NotEmpty(t, sess.ID)
	assert.Equal(t, "mockup-1", sess.MockupID)
	assert.Equal(t, "alice", sess.CreatedBy)
	assert.True(t, sess.Active)
	assert.Equal(t, []string{"alice"}, sess.ParticipantList())
}

func TestCollab_JoinBroadcastsPresence(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")

	aliceCh := &recordChannel{}
	collab.Subscribe(sess.ID, "alice", aliceCh)

	require.True(t, collab.JoinSession(sess.ID, "bob"))
	collab.Flush()

	msgs := aliceCh.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user_joined", gjson.GetBytes(msgs[0], "type").String())
	assert.Equal(t, "bob", gjson.GetBytes(msgs[0], "user_id").String())

	var roster []string
	for _, p := range gjson.GetBytes(msgs[0], "participants").Array() {
		roster = append(roster, p.String())
	}
	assert.Equal(t, []string{"alice", "bob"}, roster)
}

func TestCollab_JoinUnknownOrInactive(t *testing.T) {
	collab := New()
	assert.False(t, collab.JoinSession("ghost", "alice"))

	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.LeaveSession(sess.ID, "alice"))

	// Deactivation is terminal.
	assert.False(t, collab.JoinSession(sess.ID, "carol"))
}

func TestCollab_LeaveDeactivatesOnLastParticipant(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.JoinSession(sess.ID, "bob"))

	require.True(t, collab.LeaveSession(sess.ID, "alice"))
	state, err := collab.SessionState(sess.ID)
	require.NoError(t, err)
	assert.True(t, state.Session.Active, "still one participant")

	require.True(t, collab.LeaveSession(sess.ID, "bob"))
	state, err = collab.SessionState(sess.ID)
	require.NoError(t, err)
	assert.False(t, state.Session.Active)
	assert.Equal(t, 0, state.ActiveParticipants)

	assert.False(t, collab.LeaveSession("ghost", "x"))
}

func TestCollab_AddEventDeliveredExceptAuthor(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.JoinSession(sess.ID, "bob"))
	collab.Flush() // drain the presence broadcast before subscribing

	aliceCh, bobCh := &recordChannel{}, &recordChannel{}
	collab.Subscribe(sess.ID, "alice", aliceCh)
	collab.Subscribe(sess.ID, "bob", bobCh)

	ev, err := collab.AddEvent(sess.ID, "alice", core.KindCursor, json.RawMessage(`{"position":12}`))
	require.NoError(t, err)
	assert.Equal(t, core.KindCursor, ev.Kind)
	collab.Flush()

	assert.Equal(t, 0, aliceCh.delivered(), "author does not receive their own event")
	msgs := bobCh.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, "collaboration_event", gjson.GetBytes(msgs[0], "type").String())
	assert.Equal(t, ev.ID, gjson.GetBytes(msgs[0], "event.event_id").String())
	assert.Equal(t, float64(12), gjson.GetBytes(msgs[0], "event.payload.position").Num)
}

func TestCollab_AddEventValidation(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")

	_, err := collab.AddEvent(sess.ID, "alice", core.EventKind("bogus"), nil)
	require.Error(t, err)

	_, err = collab.AddEvent("ghost", "alice", core.KindComment, nil)
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))

	require.True(t, collab.LeaveSession(sess.ID, "alice"))
	_, err = collab.AddEvent(sess.ID, "alice", core.KindComment, nil)
	assert.True(t, errors.Is(err, core.ErrSessionInactive))
}

func TestCollab_ApplyOperationNoConcurrency(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")

	got, err := collab.ApplyOperation(sess.ID, "alice", json.RawMessage(`{"type":"insert","position":5,"text":"XY"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), gjson.GetBytes(got, "position").Int(), "no concurrent operations, position unchanged")
}

func TestCollab_ApplyOperationShiftsAgainstConcurrent(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.JoinSession(sess.ID, "bob"))

	_, err := collab.ApplyOperation(sess.ID, "bob", json.RawMessage(`{"type":"insert","position":2,"text":"abc"}`))
	require.NoError(t, err)

	got, err := collab.ApplyOperation(sess.ID, "alice", json.RawMessage(`{"type":"insert","position":5,"text":"Q"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(8), gjson.GetBytes(got, "position").Int())
}

func TestCollab_ApplyOperationInactive(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.LeaveSession(sess.ID, "alice"))

	_, err := collab.ApplyOperation(sess.ID, "alice", json.RawMessage(`{"type":"insert","position":0,"text":"x"}`))
	assert.True(t, errors.Is(err, core.ErrSessionInactive))
}

func TestCollab_SessionStateWindow(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")

	for i := 0; i < StateWindowSize+10; i++ {
		_, err := collab.AddEvent(sess.ID, "alice", core.KindCursor, json.RawMessage(`{"i":1}`))
		require.NoError(t, err)
	}

	state, err := collab.SessionState(sess.ID)
	require.NoError(t, err)
	assert.Len(t, state.RecentEvents, StateWindowSize)
	assert.Equal(t, 1, state.ActiveParticipants)

	_, err = collab.SessionState("ghost")
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
}

func TestCollab_UserSessions(t *testing.T) {
	collab := New()
	s1 := collab.CreateSession("m1", "alice", "")
	s2 := collab.CreateSession("m2", "bob", "")
	require.True(t, collab.JoinSession(s2.ID, "alice"))

	got := collab.UserSessions("alice")
	ids := make(map[string]bool, len(got))
	for _, s := range got {
		ids[s.ID] = true
	}
	assert.True(t, ids[s1.ID])
	assert.True(t, ids[s2.ID])

	// Leaving s1 deactivates it for alice.
	require.True(t, collab.LeaveSession(s1.ID, "alice"))
	assert.Len(t, collab.UserSessions("alice"), 1)
}

func TestCollab_SessionAnalytics(t *testing.T) {
	now := time.Now()
	collab := New(WithClock(func() time.Time { return now.Add(5 * time.Minute) }))
	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.JoinSession(sess.ID, "bob"))

	_, err := collab.AddEvent(sess.ID, "alice", core.KindComment, nil)
	require.NoError(t, err)
	_, err = collab.AddEvent(sess.ID, "alice", core.KindCursor, nil)
	require.NoError(t, err)
	_, err = collab.AddEvent(sess.ID, "alice", core.KindSelection, nil)
	require.NoError(t, err)
	_, err = collab.AddEvent(sess.ID, "bob", core.KindCursor, nil)
	require.NoError(t, err)

	stats := collab.SessionAnalytics(sess.ID)
	// Four explicit events plus bob's user_joined.
	assert.Equal(t, 5, stats.TotalEvents)
	assert.Equal(t, 2, stats.ParticipantsCount)
	assert.Equal(t, "alice", stats.MostActiveUser)
	assert.GreaterOrEqual(t, stats.DurationMinutes, 4.0)

	zero := collab.SessionAnalytics("ghost")
	assert.Zero(t, zero.TotalEvents)
}

func TestCollab_DeliveryPreservesAppendOrder(t *testing.T) {
	collab := New()
	sess := collab.CreateSession("m1", "alice", "")
	require.True(t, collab.JoinSession(sess.ID, "bob"))
	collab.Flush() // drain the presence broadcast before subscribing

	bobCh := &recordChannel{}
	collab.Subscribe(sess.ID, "bob", bobCh)

	const n = 40
	for i := 0; i < n; i++ {
		_, err := collab.AddEvent(sess.ID, "alice", core.KindCursor,
			json.RawMessage(`{"seq":`+strconv.Itoa(i)+`}`))
		require.NoError(t, err)
	}
	collab.Flush()

	msgs := bobCh.all()
	require.Len(t, msgs, n)
	for i, msg := range msgs {
		assert.Equal(t, int64(i), gjson.GetBytes(msg, "event.payload.seq").Int())
	}
}

func TestCollab_ScenarioEndToEnd(t *testing.T) {
	collab := New()

	sess := collab.CreateSession("mockup-9", "alice", "Landing page")
	require.True(t, sess.Active)
	require.Equal(t, []string{"alice"}, sess.ParticipantList())

	aliceCh := &recordChannel{}
	collab.Subscribe(sess.ID, "alice", aliceCh)

	require.True(t, collab.JoinSession(sess.ID, "bob"))

	// bob inserts three characters at position 2; alice's concurrent insert
	// at 5 lands at 8.
	_, err := collab.ApplyOperation(sess.ID, "bob", json.RawMessage(`{"type":"insert","position":2,"text":"abc"}`))
	require.NoError(t, err)
	adjusted, err := collab.ApplyOperation(sess.ID, "alice", json.RawMessage(`{"type":"insert","position":5,"text":"XY"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(8), gjson.GetBytes(adjusted, "position").Int())

	require.True(t, collab.LeaveSession(sess.ID, "alice"))
	require.True(t, collab.LeaveSession(sess.ID, "bob"))

	state, err := collab.SessionState(sess.ID)
	require.NoError(t, err)
	assert.False(t, state.Session.Active)
	assert.False(t, collab.JoinSession(sess.ID, "carol"), "inactive sessions reject joins")

	collab.Flush()
	require.NotEmpty(t, aliceCh.all(), "alice saw bob join and bob's operation")
}

func TestCollab_ConcurrentSessionsIndependent(t *testing.T) {
	collab := New()
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = collab.CreateSession("m", "alice", "").ID
	}
	for _, id := range ids {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := collab.AddEvent(sessionID, "alice", core.KindCursor, nil)
				if err != nil {
					t.Error(err)
					return
				}
			}
		}(id)
	}
	wg.Wait()
	collab.Flush()

	for _, id := range ids {
		state, err := collab.SessionState(id)
		require.NoError(t, err)
		assert.Len(t, state.RecentEvents, 25)
	}
}
