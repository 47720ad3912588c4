package server

import (
	"errors"
	"sync"
	"time"

	"cardbattle-server/internal/deck"
)

// RoomManager owns the live room table. It is the single source of truth for
// room and round state; everything else (gateway handlers, battle logic)
// mutates rooms only through its methods. Nothing here is persisted - a
// restart loses every room, and a disconnect forfeits the player's slot.
type RoomManager struct {
	rooms map[string]*Room
	mu    sync.RWMutex
}

type Room struct {
	ID        string
	Players   []*PlayerSlot // join order, at most 2
	Status    RoomStatus
	Round     map[string]deck.Card // connection id -> card played this round
	CreatedAt time.Time
	UpdatedAt time.Time

	// decksExchanged makes the battle-start pairing a one-shot: a deck
	// resubmitted after the exchange still overwrites the submitter's own
	// slot, but never re-fires the notification.
	decksExchanged bool
}

type PlayerSlot struct {
	ConnID   string
	Deck     deck.Deck // nil until a sanitized deck has been stored
	JoinedAt time.Time
}

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusMatched RoomStatus = "matched"
)

var (
	ErrRoomNotFound = errors.New("ROOM_NOT_FOUND: room does not exist or is full")
	ErrRoomFull     = errors.New("ROOM_FULL: room already has 2 players")
	ErrNotInRoom    = errors.New("UNAUTHORIZED: not a member of this room")
)

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom allocates a fresh room in waiting status with the creator as
// its first player, and returns the room id. It never fails.
func (rm *RoomManager) CreateRoom(connID string) string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	inUse := make(map[string]bool, len(rm.rooms))
	for id := range rm.rooms {
		inUse[id] = true
	}
	roomID := GenerateRoomID(inUse)

	now := time.Now()
	room := &Room{
		ID:        roomID,
		Status:    StatusWaiting,
		Round:     make(map[string]deck.Card),
		CreatedAt: now,
		UpdatedAt: now,
	}
	room.Players = append(room.Players, &PlayerSlot{
		ConnID:   connID,
		JoinedAt: now,
	})

	rm.rooms[roomID] = room
	return roomID
}

// JoinRoom adds a player to an existing room and returns the connection ids
// of all members, for the caller to notify. A full room is never mutated.
func (rm *RoomManager) JoinRoom(roomID, connID string) ([]string, error) {
	roomID = NormalizeRoomID(roomID)
	if err := ValidateRoomID(roomID); err != nil {
		return nil, ErrRoomNotFound
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}

	if !room.member(connID) {
		if len(room.Players) >= 2 {
			return nil, ErrRoomFull
		}

		now := time.Now()
		room.Players = append(room.Players, &PlayerSlot{
			ConnID:   connID,
			JoinedAt: now,
		})
		room.Status = StatusMatched
		room.UpdatedAt = now
	}

	members := make([]string, len(room.Players))
	for i, slot := range room.Players {
		members[i] = slot.ConnID
	}
	return members, nil
}

// Lookup returns the live room for an id, if any. The returned pointer
// shares state guarded by the manager lock: reading it while handler
// goroutines are live is a data race. Concurrent observers must use the
// snapshot accessors (PlayerCount, RoundSize, DecksStored, DecksExchanged)
// instead.
func (rm *RoomManager) Lookup(roomID string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	return room, exists
}

// PlayerCount returns the number of seated players, or 0 for a room that
// does not exist.
func (rm *RoomManager) PlayerCount(roomID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	if !exists {
		return 0
	}
	return len(room.Players)
}

// IsMember reports whether a connection currently holds a slot in the room.
func (rm *RoomManager) IsMember(roomID, connID string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	return exists && room.member(connID)
}

// RemovePlayer drops a disconnected player from any room holding it, along
// with any pending round entry. A room whose last player leaves is destroyed
// on the spot, which frees its id for reuse. Safe to call for connections
// that never joined anything.
func (rm *RoomManager) RemovePlayer(connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for roomID, room := range rm.rooms {
		changed := false
		for i, slot := range room.Players {
			if slot.ConnID == connID {
				room.Players = append(room.Players[:i], room.Players[i+1:]...)
				changed = true
				break
			}
		}

		if _, pending := room.Round[connID]; pending {
			delete(room.Round, connID)
			changed = true
		}

		if len(room.Players) == 0 {
			delete(rm.rooms, roomID)
		} else if changed {
			room.UpdatedAt = time.Now()
		}
	}
}

// RoomCount returns the number of live rooms.
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// member reports slot ownership. Caller must hold the manager lock.
func (r *Room) member(connID string) bool {
	for _, slot := range r.Players {
		if slot.ConnID == connID {
			return true
		}
	}
	return false
}
