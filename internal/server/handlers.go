package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/coder/websocket"

	"cardbattle-server/internal/deck"
)

func (s *Server) handleCreateRoom(socket *websocket.Conn, ctx context.Context, connectionID string) {
	roomID := s.roomManager.CreateRoom(connectionID)
	log.Printf("Room created: %s by %s", roomID, connectionID)

	response := ServerMessage{
		Type: "room-created",
		Payload: RoomCreatedResponse{
			RoomID: roomID,
		},
	}
	if err := s.sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send room-created: %v", err)
	}
}

func (s *Server) handleJoinRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendRoomError(socket, ctx, "Invalid join-room payload")
		return
	}

	members, err := s.roomManager.JoinRoom(req.RoomID, connectionID)
	if err != nil {
		s.sendRoomError(socket, ctx, err.Error())
		return
	}

	log.Printf("%s joined room: %s", connectionID, NormalizeRoomID(req.RoomID))

	// Matching complete: everyone in the room, joiner included, moves on.
	for _, memberID := range members {
		s.sendToConnection(memberID, ServerMessage{
			Type:    "game-start",
			Payload: struct{}{},
		})
	}
}

// handleJoinBattleRoom runs the deck through the defense pipeline and stores
// it. The returned flag tells the read loop to drop the connection: any
// rejection here is fail-closed, the client gets one room-error and is gone.
func (s *Server) handleJoinBattleRoom(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) bool {
	var req JoinBattleRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendRoomError(socket, ctx, "Invalid join-battle-room payload")
		return true
	}

	// Only seated players may submit a deck; strangers are cut off rather
	// than granted a slot.
	if !s.roomManager.IsMember(req.RoomID, connectionID) {
		s.sendRoomError(socket, ctx, ErrNotInRoom.Error())
		return true
	}

	validated, err := deck.Validate(req.Deck)
	if err != nil {
		log.Printf("Deck rejected for %s in %s: %v", connectionID, req.RoomID, err)
		s.sendRoomError(socket, ctx, err.Error())
		return true
	}

	// Sanitizing transcodes up to 7 images and can take a while. It runs on
	// this connection's read loop, so other connections proceed in the
	// meantime; see StoreDeck for how concurrent submissions interleave.
	sanitized, err := deck.Sanitize(ctx, validated)
	if err != nil {
		log.Printf("Deck sanitization failed for %s in %s: %v", connectionID, req.RoomID, err)
		s.sendRoomError(socket, ctx, err.Error())
		return true
	}

	exchange, err := s.roomManager.StoreDeck(req.RoomID, connectionID, sanitized)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			// Room died mid-sanitize (opponent disconnected). Nothing to
			// store and nobody to notify.
			log.Printf("Room %s gone before deck store from %s", req.RoomID, connectionID)
			return false
		}
		s.sendRoomError(socket, ctx, err.Error())
		return true
	}

	log.Printf("Player %s in room %s submitted their deck", connectionID, NormalizeRoomID(req.RoomID))

	if exchange == nil {
		return false
	}

	// Both decks ready: each player receives the other's sanitized deck.
	log.Printf("Both players in room %s are ready, starting battle", NormalizeRoomID(req.RoomID))
	for _, pair := range exchange.Pairs {
		s.sendToConnection(pair.ConnID, ServerMessage{
			Type: "battle-start",
			Payload: BattleStartNotification{
				OpponentDeck: pair.OpponentDeck,
			},
		})
	}
	return false
}

func (s *Server) handlePlayCard(socket *websocket.Conn, ctx context.Context, connectionID string, payload json.RawMessage) {
	var req PlayCardRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendRoomError(socket, ctx, "Invalid play-card payload")
		return
	}

	// A nil resolution means either the round is still waiting on the other
	// player, or the room is long gone. Stale clients get no signal.
	resolution := s.roomManager.SubmitMove(req.RoomID, connectionID, req.Card)
	if resolution == nil {
		return
	}

	for _, outcome := range resolution.Outcomes {
		s.sendToConnection(outcome.ConnID, ServerMessage{
			Type: "battle-result",
			Payload: BattleResultNotification{
				MyCard:       outcome.MyCard,
				OpponentCard: outcome.OpponentCard,
				Result:       outcome.Result,
			},
		})
	}
}
