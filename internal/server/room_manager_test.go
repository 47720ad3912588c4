package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardbattle-server/internal/deck"
)

func TestCreateRoomInitialState(t *testing.T) {
	rm := NewRoomManager()

	roomID := rm.CreateRoom("conn-1")

	assert.NoError(t, ValidateRoomID(roomID))

	room, exists := rm.Lookup(roomID)
	require.True(t, exists)
	assert.Equal(t, StatusWaiting, room.Status)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "conn-1", room.Players[0].ConnID)
	assert.Empty(t, room.Round)
}

func TestCreateRoomUniqueIDs(t *testing.T) {
	rm := NewRoomManager()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		roomID := rm.CreateRoom("conn-1")
		assert.False(t, seen[roomID], "Id %s allocated twice among live rooms", roomID)
		seen[roomID] = true
	}
}

func TestJoinRoomSuccess(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")

	members, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"conn-1", "conn-2"}, members, "Members should be in join order")

	room, _ := rm.Lookup(roomID)
	assert.Equal(t, StatusMatched, room.Status)
}

func TestJoinRoomNormalizesID(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")

	// Clients paste ids in any case they like.
	lower := make([]byte, len(roomID))
	for i := range roomID {
		c := roomID[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}

	_, err := rm.JoinRoom(string(lower), "conn-2")
	assert.NoError(t, err)
}

func TestJoinRoomNotFound(t *testing.T) {
	rm := NewRoomManager()

	_, err := rm.JoinRoom("NOPE99", "conn-1")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = rm.JoinRoom("not-a-room-id", "conn-1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomFullNeverMutates(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")
	_, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)

	_, err = rm.JoinRoom(roomID, "conn-3")
	assert.ErrorIs(t, err, ErrRoomFull)

	room, _ := rm.Lookup(roomID)
	require.Len(t, room.Players, 2)
	assert.Equal(t, "conn-1", room.Players[0].ConnID)
	assert.Equal(t, "conn-2", room.Players[1].ConnID)
}

func TestJoinRoomIdempotentForMembers(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")
	_, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)

	// A member re-sending join-room must not consume the second slot twice.
	members, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"conn-1", "conn-2"}, members)
}

func TestIsMember(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")

	assert.True(t, rm.IsMember(roomID, "conn-1"))
	assert.False(t, rm.IsMember(roomID, "conn-2"))
	assert.False(t, rm.IsMember("NOPE99", "conn-1"))
}

func TestPlayerCount(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")

	assert.Equal(t, 1, rm.PlayerCount(roomID))
	assert.Equal(t, 0, rm.PlayerCount("NOPE99"))

	_, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)
	assert.Equal(t, 2, rm.PlayerCount(roomID))

	rm.RemovePlayer("conn-1")
	assert.Equal(t, 1, rm.PlayerCount(roomID))
}

func TestRemovePlayerDestroysEmptyRoom(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")

	rm.RemovePlayer("conn-1")

	_, exists := rm.Lookup(roomID)
	assert.False(t, exists, "Room with no players should be destroyed")
	assert.Equal(t, 0, rm.RoomCount())
}

func TestRemovePlayerKeepsOccupiedRoom(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")
	_, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)

	rm.RemovePlayer("conn-1")

	room, exists := rm.Lookup(roomID)
	require.True(t, exists)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "conn-2", room.Players[0].ConnID)
}

func TestRemovePlayerClearsPendingMove(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")
	_, err := rm.JoinRoom(roomID, "conn-2")
	require.NoError(t, err)

	res := rm.SubmitMove(roomID, "conn-1", deck.Card{ID: "a", Hand: deck.HandFire})
	require.Nil(t, res)

	rm.RemovePlayer("conn-1")

	room, _ := rm.Lookup(roomID)
	assert.Empty(t, room.Round, "Disconnect should drop the pending round entry")
}

func TestRemovePlayerIdempotent(t *testing.T) {
	rm := NewRoomManager()
	rm.CreateRoom("conn-1")

	// Unknown connections and repeated removals are both no-ops.
	rm.RemovePlayer("ghost")
	rm.RemovePlayer("conn-1")
	rm.RemovePlayer("conn-1")

	assert.Equal(t, 0, rm.RoomCount())
}

func TestRoomIDReusableAfterDestruction(t *testing.T) {
	rm := NewRoomManager()
	roomID := rm.CreateRoom("conn-1")
	rm.RemovePlayer("conn-1")

	// The id is free again once the room is gone: a new room under the same
	// id is a fresh room, not the old one.
	rm.mu.Lock()
	rm.rooms[roomID] = &Room{
		ID:      roomID,
		Status:  StatusWaiting,
		Round:   make(map[string]deck.Card),
		Players: []*PlayerSlot{{ConnID: "conn-9"}},
	}
	rm.mu.Unlock()

	room, exists := rm.Lookup(roomID)
	require.True(t, exists)
	assert.Equal(t, "conn-9", room.Players[0].ConnID)
}
