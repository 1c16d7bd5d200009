package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallKind(t *testing.T) {
	k, err := ParseCallKind(" Video ")
	require.NoError(t, err)
	assert.Equal(t, CallVideo, k)

	_, err = ParseCallKind("hologram")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCallStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to CallStatus
		ok       bool
	}{
		{CallInitiated, CallRinging, true},
		{CallInitiated, CallConnected, true},
		{CallRinging, CallConnected, true},
		{CallRinging, CallRejected, true},
		{CallConnected, CallEnded, true},
		{CallConnected, CallRejected, false},
		{CallConnected, CallRinging, false},
		{CallEnded, CallConnected, false},
		{CallRejected, CallEnded, false},
		{CallFailed, CallFailed, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCallPeerAndConnection(t *testing.T) {
	c := Call{CallerID: "a", CalleeID: "b", CallerConnectionID: "ca"}

	peer, ok := c.Peer("a")
	require.True(t, ok)
	assert.Equal(t, UserID("b"), peer)

	_, ok = c.Peer("z")
	assert.False(t, ok)

	assert.Equal(t, ConnectionID("ca"), c.ConnectionFor("a"))
	assert.Empty(t, c.ConnectionFor("b"))
	assert.False(t, c.IsParticipant("z"))
}

func TestCallDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c := Call{ConnectedAt: start}
	assert.Zero(t, c.Duration())

	c.EndedAt = start.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, c.Duration())
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity(" u-1 ", "")
	require.NoError(t, err)
	assert.Equal(t, UserID("u-1"), id.ID)
	assert.Equal(t, "u-1", id.Name)

	_, err = NewIdentity("  ", "bob")
	assert.ErrorIs(t, err, ErrUserIDEmpty)
}
