package collabmesh

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/model"
)

func TestCollabMesh_MockupToSessionFlow(t *testing.T) {
	mock := model.NewMockModel("test-model")
	mock.AddResponse("User Request: add a blue button",
		"```html\n<!DOCTYPE html>\n<html><body><button>Go</button></body></html>\n```")

	mesh := New(func(o *Options) { o.Model = mock })

	generated, err := mesh.GenerateMockup(context.Background(), nil, "add a blue button")
	require.NoError(t, err)
	require.Equal(t, core.MockupStatusComplete, generated.Status)

	stored, err := mesh.Mockup(generated.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.HTML, "<button>")

	sess := mesh.CreateSession(generated.ID, "alice", "Button review")
	require.True(t, mesh.JoinSession(sess.ID, "bob"))

	adjusted, err := mesh.ApplyOperation(sess.ID, "alice", json.RawMessage(`{"type":"insert","position":0,"text":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(0), gjson.GetBytes(adjusted, "position").Int())

	_, err = mesh.AddEvent(sess.ID, "bob", core.KindComment, json.RawMessage(`{"text":"nice"}`))
	require.NoError(t, err)

	stats := mesh.SessionAnalytics(sess.ID)
	assert.Equal(t, 2, stats.ParticipantsCount)
	assert.Greater(t, stats.TotalEvents, 0)

	mesh.Flush()
}

func TestCollabMesh_GenerateWithoutModel(t *testing.T) {
	mesh := New()
	_, err := mesh.GenerateMockup(context.Background(), nil, "anything")
	assert.ErrorIs(t, err, core.ErrNoModel)
}

func TestCollabMesh_ListMockups(t *testing.T) {
	mock := model.NewMockModel("test-model")
	mesh := New(func(o *Options) { o.Model = mock })

	_, err := mesh.GenerateMockup(context.Background(), nil, "make the navbar dark")
	require.NoError(t, err)

	infos, err := mesh.Mockups()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "make the navbar dark", infos[0].Prompt)
}
