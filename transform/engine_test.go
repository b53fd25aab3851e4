package transform

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/eventlog"
)

func opEvent(sessionID, userID string, op core.Operation) core.Event {
	return core.NewEvent(sessionID, userID, core.KindOperation, op.Payload())
}

func position(t *testing.T, payload json.RawMessage) int {
	t.Helper()
	res := gjson.GetBytes(payload, "position")
	require.True(t, res.Exists(), "payload missing position: %s", payload)
	return int(res.Int())
}

func TestAdjust_NoConcurrencyIdentity(t *testing.T) {
	op := core.NewInsert(5, "XY").Payload()
	got := Adjust(op, nil, "alice")
	assert.JSONEq(t, string(op), string(got))

	// Own operations never count as concurrent.
	window := []core.Event{opEvent("s1", "alice", core.NewInsert(0, "abc"))}
	got = Adjust(op, window, "alice")
	assert.Equal(t, 5, position(t, got))
}

func TestAdjust_InsertShiftsForward(t *testing.T) {
	// bob inserted 3 characters at position 2; alice's insert at 5 lands at 8.
	window := []core.Event{opEvent("s1", "bob", core.NewInsert(2, "abc"))}
	got := Adjust(core.NewInsert(5, "XY").Payload(), window, "alice")
	assert.Equal(t, 8, position(t, got))
}

func TestAdjust_InsertAtSamePositionShifts(t *testing.T) {
	// Boundary: a concurrent insert at exactly the operation's position counts.
	window := []core.Event{opEvent("s1", "bob", core.NewInsert(5, "ab"))}
	got := Adjust(core.NewInsert(5, "XY").Payload(), window, "alice")
	assert.Equal(t, 7, position(t, got))
}

func TestAdjust_DeleteShiftsBackward(t *testing.T) {
	window := []core.Event{opEvent("s1", "bob", core.NewDelete(1, 3))}
	got := Adjust(core.NewInsert(5, "XY").Payload(), window, "alice")
	assert.Equal(t, 2, position(t, got))
}

func TestAdjust_DeleteAtSamePositionDoesNotShift(t *testing.T) {
	// Boundary: delete shift requires a strictly smaller position.
	window := []core.Event{opEvent("s1", "bob", core.NewDelete(5, 3))}
	got := Adjust(core.NewInsert(5, "XY").Payload(), window, "alice")
	assert.Equal(t, 5, position(t, got))
}

func TestAdjust_ClampedAtZero(t *testing.T) {
	window := []core.Event{opEvent("s1", "bob", core.NewDelete(0, 10))}
	got := Adjust(core.NewInsert(2, "XY").Payload(), window, "alice")
	assert.Equal(t, 0, position(t, got))
}

func TestAdjust_DeleteLengthCarriedUnchanged(t *testing.T) {
	window := []core.Event{opEvent("s1", "bob", core.NewInsert(0, "abcd"))}
	got := Adjust(core.NewDelete(3, 7).Payload(), window, "alice")
	assert.Equal(t, 7, position(t, got))
	assert.Equal(t, int64(7), gjson.GetBytes(got, "length").Int())
}

func TestAdjust_ShiftsAccumulateAgainstOriginalPosition(t *testing.T) {
	// Both concurrent ops compare against the original position 5, and their
	// shifts sum: +2 (insert at 3) -1 (delete at 4) = 6.
	window := []core.Event{
		opEvent("s1", "bob", core.NewInsert(3, "ab")),
		opEvent("s1", "carol", core.NewDelete(4, 1)),
	}
	got := Adjust(core.NewInsert(5, "XY").Payload(), window, "alice")
	assert.Equal(t, 6, position(t, got))
}

func TestAdjust_InsertLengthCountsRunes(t *testing.T) {
	window := []core.Event{opEvent("s1", "bob", core.NewInsert(0, "héllo"))}
	got := Adjust(core.NewInsert(5, "X").Payload(), window, "alice")
	assert.Equal(t, 10, position(t, got))
}

func TestAdjust_NonPositionalPayloadPassesThrough(t *testing.T) {
	op := json.RawMessage(`{"type":"format","style":"bold"}`)
	window := []core.Event{opEvent("s1", "bob", core.NewInsert(0, "abc"))}
	got := Adjust(op, window, "alice")
	assert.JSONEq(t, string(op), string(got))
}

func TestAdjust_NonOperationEventsIgnored(t *testing.T) {
	window := []core.Event{
		core.NewEvent("s1", "bob", core.KindCursor, core.NewInsert(0, "abc").Payload()),
		core.NewEvent("s1", "bob", core.KindComment, nil),
	}
	got := Adjust(core.NewInsert(5, "XY").Payload(), window, "alice")
	assert.Equal(t, 5, position(t, got))
}

func TestAdjust_PreservesExtraFields(t *testing.T) {
	op := json.RawMessage(`{"type":"insert","position":5,"text":"XY","client_seq":42}`)
	window := []core.Event{opEvent("s1", "bob", core.NewInsert(0, "abc"))}
	got := Adjust(op, window, "alice")
	assert.Equal(t, 8, position(t, got))
	assert.Equal(t, int64(42), gjson.GetBytes(got, "client_seq").Int())
	assert.Equal(t, "XY", gjson.GetBytes(got, "text").String())
}

func TestAdjust_Deterministic(t *testing.T) {
	window := []core.Event{
		opEvent("s1", "bob", core.NewInsert(2, "abc")),
		opEvent("s1", "carol", core.NewDelete(1, 1)),
	}
	op := core.NewInsert(5, "XY").Payload()
	first := Adjust(op, window, "alice")
	for i := 0; i < 10; i++ {
		assert.Equal(t, string(first), string(Adjust(op, window, "alice")))
	}
}

func TestEngine_WindowBound(t *testing.T) {
	log := eventlog.NewInMemoryLog()
	e := New(log)

	// An old insert pushed out of the 10-event window must not shift anything.
	log.Append(opEvent("s1", "bob", core.NewInsert(0, "zzzz")))
	for i := 0; i < DefaultWindowSize; i++ {
		log.Append(core.NewEvent("s1", "bob", core.KindCursor, nil))
	}

	ev := e.Transform("s1", "alice", core.NewInsert(5, "XY").Payload())
	assert.Equal(t, 5, position(t, ev.Payload))
}

func TestEngine_TransformRecordsOperationEvent(t *testing.T) {
	log := eventlog.NewInMemoryLog()
	e := New(log)

	log.Append(opEvent("s1", "bob", core.NewInsert(2, "abc")))
	before := log.Len("s1")

	ev := e.Transform("s1", "alice", core.NewInsert(5, "XY").Payload())

	require.Equal(t, before+1, log.Len("s1"))
	assert.Equal(t, core.KindOperation, ev.Kind)
	assert.Equal(t, "alice", ev.UserID)
	assert.Equal(t, 8, position(t, ev.Payload))

	// The recorded operation now feeds transforms for other users.
	next := e.Transform("s1", "bob", core.NewInsert(10, "Q").Payload())
	assert.Equal(t, 12, position(t, next.Payload))
}

func TestEngine_CustomWindowSize(t *testing.T) {
	log := eventlog.NewInMemoryLog()
	e := New(log, WithWindowSize(2))

	log.Append(opEvent("s1", "bob", core.NewInsert(0, "aa")))
	log.Append(opEvent("s1", "bob", core.NewInsert(0, "bb")))
	log.Append(opEvent("s1", "bob", core.NewInsert(0, "cc")))

	// Only the last two inserts are visible with a window of 2.
	ev := e.Transform("s1", "alice", core.NewInsert(5, "X").Payload())
	assert.Equal(t, 9, position(t, ev.Payload))
}

func TestEngine_SequentialConvergenceBurst(t *testing.T) {
	log := eventlog.NewInMemoryLog()
	e := New(log)

	// alice and bob alternate edits; every submission sees the other's prior
	// operations through the window.
	positions := []int{}
	users := []string{"alice", "bob", "alice", "bob"}
	for i, u := range users {
		ev := e.Transform("s1", u, core.NewInsert(i, fmt.Sprintf("t%d", i)).Payload())
		positions = append(positions, position(t, ev.Payload))
	}
	// Each op shifts by the other user's prior inserts at or before its
	// position (2 runes each): 0; 1+2; 2 (bob's op landed at 3, after); 3+2+2.
	assert.Equal(t, []int{0, 3, 2, 7}, positions)
}
