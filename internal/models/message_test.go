package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInboundJoinSession(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"join_session","projectId":"p1","user":{"id":"u1","name":"Alice"}}`))
	require.NoError(t, err)

	joined, ok := msg.(JoinSession)
	require.True(t, ok)
	assert.Equal(t, "p1", joined.ProjectID)
	assert.Equal(t, "Alice", joined.User.Name)
}

func TestDecodeInboundRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"join without project", `{"type":"join_session","user":{"name":"A"}}`},
		{"join without user name", `{"type":"join_session","projectId":"p1","user":{}}`},
		{"leave without user", `{"type":"leave_session","sessionId":"s1"}`},
		{"cursor without session", `{"type":"cursor_update","cursor":{"x":1,"y":2}}`},
		{"selection without session", `{"type":"track_selection","trackId":"t1"}`},
		{"edit without target", `{"type":"apply_edit","sessionId":"s1","edit":{"type":"track_edit"}}`},
		{"resolve without conflict", `{"type":"resolve_conflict","sessionId":"s1"}`},
		{"chat without session", `{"type":"chat_message","message":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeInboundMalformedEnvelope(t *testing.T) {
	_, err := DecodeInbound([]byte(`{{{`))
	assert.Error(t, err)

	_, err = DecodeInbound([]byte(`{"projectId":"p1"}`))
	assert.Error(t, err, "missing type tag")
}

func TestDecodeInboundUnknownType(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":"hologram_update"}`))

	var unknown *ErrUnknownType
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "hologram_update", unknown.Type)
}

func TestDecodeInboundPing(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	_, ok := msg.(Ping)
	assert.True(t, ok)
}

func TestDecodeInboundEditProposal(t *testing.T) {
	msg, err := DecodeInbound([]byte(
		`{"type":"apply_edit","sessionId":"s1","edit":{"type":"volume_change","target":"track3","changedKeys":["volume"],"data":{"volume":0.8}}}`))
	require.NoError(t, err)

	apply := msg.(ApplyEdit)
	assert.Equal(t, EditTypeVolume, apply.Edit.Type)
	assert.Equal(t, []string{"volume"}, apply.Edit.ChangedKeys)
	assert.Equal(t, 0.8, apply.Edit.Data["volume"])
}

func TestNewEditStampsIdentityAndTime(t *testing.T) {
	e := NewEdit("alice", EditProposal{Type: EditTypeTrack, Target: "track1"})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "alice", e.UserID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Status, "status is set by conflict evaluation, not construction")
}
