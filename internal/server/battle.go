package server

import (
	"cardbattle-server/internal/deck"
	"cardbattle-server/internal/game"
)

// Battle-phase operations on the room table: deck storage with the one-time
// exchange, and the two-player round barrier. Validation and sanitization
// happen in the gateway before any of this runs; by the time a deck reaches
// StoreDeck it is already in canonical form.

// DeckExchange is the one-time battle-start pairing: each member receives
// the other player's sanitized deck.
type DeckExchange struct {
	Pairs []ExchangePair
}

type ExchangePair struct {
	ConnID       string
	OpponentDeck deck.Deck
}

// RoundResolution carries one personalized outcome per member of a resolved
// round.
type RoundResolution struct {
	Outcomes []RoundOutcome
}

type RoundOutcome struct {
	ConnID       string
	MyCard       deck.Card
	OpponentCard deck.Card
	Result       game.Result
}

// StoreDeck places a sanitized deck on the submitter's own slot. The
// submitter must already be a room member; battle-room joins from strangers
// are refused outright rather than granted a slot.
//
// When the store leaves both slots holding decks for the first time, the
// exchange fires: the returned DeckExchange tells the caller to send each
// player the opposing deck. Any later resubmission only overwrites the
// submitter's slot and returns nil.
//
// Interleaving note: two members can pass validation and sanitize
// concurrently. Each store only ever writes the submitter's own slot under
// the table lock, so the last sanitize to finish overwrites only itself.
// Serializing submissions per room would change observable timing.
func (rm *RoomManager) StoreDeck(roomID, connID string, d deck.Deck) (*DeckExchange, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	if !exists {
		return nil, ErrRoomNotFound
	}

	var own *PlayerSlot
	for _, slot := range room.Players {
		if slot.ConnID == connID {
			own = slot
			break
		}
	}
	if own == nil {
		return nil, ErrNotInRoom
	}

	own.Deck = d

	if room.decksExchanged || len(room.Players) < 2 {
		return nil, nil
	}
	for _, slot := range room.Players {
		if slot.Deck == nil {
			return nil, nil
		}
	}

	room.decksExchanged = true
	return &DeckExchange{
		Pairs: []ExchangePair{
			{ConnID: room.Players[0].ConnID, OpponentDeck: room.Players[1].Deck},
			{ConnID: room.Players[1].ConnID, OpponentDeck: room.Players[0].Deck},
		},
	}, nil
}

// SubmitMove records a played card for the current round, last-write-wins
// per connection. A move into a room that no longer exists is silently
// dropped: stale clients of an already-ended room get no signal, matching
// the fail-silent policy. The same goes for moves from connections with no
// seat in the room, which keeps the round map scoped to current players.
//
// The round resolves the moment two distinct connections hold entries. The
// round map is drained in the same critical section that produces the
// outcome payloads, so observers never see a resolved-but-undrained round.
func (rm *RoomManager) SubmitMove(roomID, connID string, card deck.Card) *RoundResolution {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	if !exists || !room.member(connID) {
		return nil
	}

	room.Round[connID] = card

	if len(room.Round) != 2 {
		return nil
	}

	// Pair the entries in join order. Disconnect cleanup removes both the
	// slot and the round entry, so two entries always belong to the two
	// seated players.
	ids := make([]string, 0, 2)
	for _, slot := range room.Players {
		if _, ok := room.Round[slot.ConnID]; ok {
			ids = append(ids, slot.ConnID)
		}
	}

	cardA, cardB := room.Round[ids[0]], room.Round[ids[1]]
	resultA, resultB := game.Resolve(cardA.Hand, cardB.Hand)

	room.Round = make(map[string]deck.Card)

	return &RoundResolution{
		Outcomes: []RoundOutcome{
			{ConnID: ids[0], MyCard: cardA, OpponentCard: cardB, Result: resultA},
			{ConnID: ids[1], MyCard: cardB, OpponentCard: cardA, Result: resultB},
		},
	}
}

// Snapshot accessors for observing battle state while handlers are live.
// They take the table lock; see Lookup for why reading through a bare *Room
// is not safe concurrently.

// RoundSize returns the number of moves recorded for the current round, or
// 0 for a room that does not exist.
func (rm *RoomManager) RoundSize(roomID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	if !exists {
		return 0
	}
	return len(room.Round)
}

// DecksStored returns how many of the room's slots hold a deck.
func (rm *RoomManager) DecksStored(roomID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	if !exists {
		return 0
	}

	stored := 0
	for _, slot := range room.Players {
		if slot.Deck != nil {
			stored++
		}
	}
	return stored
}

// DecksExchanged reports whether battle-start has fired for the room.
func (rm *RoomManager) DecksExchanged(roomID string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, exists := rm.rooms[NormalizeRoomID(roomID)]
	return exists && room.decksExchanged
}
