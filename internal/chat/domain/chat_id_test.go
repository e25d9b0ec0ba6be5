package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatIDRoundTrip(t *testing.T) {
	s, err := BuildChatID("r1", "p1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "ride_r1_p1_d1", s)

	id, err := ParseChatID(s)
	require.NoError(t, err)
	assert.Equal(t, ChatID{RideID: "r1", PassengerID: "p1", DriverID: "d1"}, id)
}

func TestParseChatIDRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"ride_r1_p1",
		"chat_r1_p1_d1",
		"ride_r1_p1_d1_x",
		"ride__p1_d1",
		"ride_r1_p1_p1",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseChatID(s)
			assert.ErrorIs(t, err, ErrInvalidChatID)
		})
	}
}

func TestBuildChatIDRejectsUnderscore(t *testing.T) {
	_, err := BuildChatID("r_1", "p1", "d1")
	assert.ErrorIs(t, err, ErrInvalidChatID)
}

func TestPeer(t *testing.T) {
	id := ChatID{RideID: "r1", PassengerID: "p1", DriverID: "d1"}

	peer, ok := id.Peer("p1")
	assert.True(t, ok)
	assert.Equal(t, "d1", peer)

	peer, ok = id.Peer("d1")
	assert.True(t, ok)
	assert.Equal(t, "p1", peer)

	_, ok = id.Peer("x")
	assert.False(t, ok)
	assert.False(t, id.Participant(""))
}
