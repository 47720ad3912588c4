package server

import (
	"encoding/json"

	"cardbattle-server/internal/deck"
	"cardbattle-server/internal/game"
)

// ============================================================================
// ERROR RESPONSES (room-error)
// ============================================================================
// tygo:generate
type RoomError struct {
	Message string `json:"message"`
}

// ============================================================================
// CREATE ROOM (create-room / room-created)
// ============================================================================
// tygo:generate
type RoomCreatedResponse struct {
	RoomID string `json:"roomId"`
}

// ============================================================================
// JOIN ROOM (join-room / game-start)
// ============================================================================
// tygo:generate
type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

// game-start carries no payload - matching merely means both sides move on
// to deck submission.

// ============================================================================
// JOIN BATTLE ROOM (join-battle-room / battle-start)
// ============================================================================
// tygo:generate
type JoinBattleRoomRequest struct {
	RoomID string `json:"roomId"`
	// Deck stays raw here: it is untrusted until the validator and
	// sanitizer have had their say.
	Deck json.RawMessage `json:"deck"`
}

// tygo:generate
type BattleStartNotification struct {
	OpponentDeck deck.Deck `json:"opponentDeck"`
}

// ============================================================================
// PLAY CARD (play-card / battle-result)
// ============================================================================
// tygo:generate
type PlayCardRequest struct {
	RoomID string    `json:"roomId"`
	Card   deck.Card `json:"card"`
}

// tygo:generate
type BattleResultNotification struct {
	MyCard       deck.Card   `json:"myCard"`
	OpponentCard deck.Card   `json:"opponentCard"`
	Result       game.Result `json:"result"`
}

// ============================================================================
// HEALTH CHECK (GET / and /health)
// ============================================================================
// tygo:generate
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
