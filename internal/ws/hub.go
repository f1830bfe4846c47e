package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"holdem-service/internal/config"
	"holdem-service/internal/game"
	"holdem-service/internal/service"
	"holdem-service/pkg/logger"

	"go.uber.org/zap"
)

// Message is the wire envelope, both directions.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub tracks connected players, their room membership, and drives the game
// tables behind the socket protocol. All table mutations funnel through here
// so that every state change is followed by a broadcast.
type Hub struct {
	mu       sync.Mutex
	clients  map[int64]*client
	rooms    map[int64]map[int64]bool
	settled  map[int64]bool
	services *service.Container
}

func NewHub(services *service.Container) *Hub {
	return &Hub{
		clients:  make(map[int64]*client),
		rooms:    make(map[int64]map[int64]bool),
		settled:  make(map[int64]bool),
		services: services,
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if old, ok := h.clients[c.userID]; ok {
		old.close()
	}
	h.clients[c.userID] = c
	h.mu.Unlock()

	logger.Log.Info("ws connected", zap.Int64("userID", c.userID))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	roomIDs := make([]int64, 0, 1)
	for roomID, members := range h.rooms {
		if members[c.userID] {
			delete(members, c.userID)
			roomIDs = append(roomIDs, roomID)
		}
	}
	h.mu.Unlock()

	// A dropped connection plays as a fold; the seat is reclaimed at the
	// next hand boundary.
	for _, roomID := range roomIDs {
		if tbl, ok := h.services.Tables.Get(roomID); ok {
			if err := tbl.RemovePlayer(c.userID); err == nil {
				h.broadcastToRoom(roomID, Message{
					Type: "player_left",
					Data: map[string]interface{}{"user_id": c.userID},
				}, 0)
				h.broadcastState(roomID)
			}
		}
	}
	logger.Log.Info("ws disconnected", zap.Int64("userID", c.userID))
}

func (h *Hub) sendTo(userID int64, msg Message) {
	h.mu.Lock()
	c, ok := h.clients[userID]
	h.mu.Unlock()
	if ok {
		c.send(msg)
	}
}

func (h *Hub) broadcastToRoom(roomID int64, msg Message, excludeUser int64) {
	for _, userID := range h.roomMembers(roomID) {
		if excludeUser != 0 && userID == excludeUser {
			continue
		}
		h.sendTo(userID, msg)
	}
}

func (h *Hub) roomMembers(roomID int64) []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := make([]int64, 0, len(h.rooms[roomID]))
	for userID := range h.rooms[roomID] {
		members = append(members, userID)
	}
	return members
}

// broadcastState pushes each member their own view of the table, then runs
// end-of-hand settlement once per finished hand.
func (h *Hub) broadcastState(roomID int64) {
	tbl, ok := h.services.Tables.Get(roomID)
	if !ok {
		return
	}

	for _, userID := range h.roomMembers(roomID) {
		h.sendTo(userID, Message{Type: "game_state", Data: tbl.Snapshot(userID)})
	}

	if tbl.Stage() == game.StageFinished {
		h.settleHand(roomID, tbl)
	}
}

func (h *Hub) settleHand(roomID int64, tbl *game.Table) {
	results := tbl.Results()
	if results == nil {
		return
	}

	h.mu.Lock()
	if h.settled[roomID] {
		h.mu.Unlock()
		return
	}
	h.settled[roomID] = true
	h.mu.Unlock()

	h.broadcastToRoom(roomID, Message{Type: "game_results", Data: results}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.services.Wallet.SettleHand(ctx, roomID, results); err != nil {
		logger.Log.Error("hand settlement failed", zap.Int64("roomID", roomID), zap.Error(err))
	}
	h.services.Room.SetStatus(ctx, roomID, "waiting")

	delay := time.Duration(config.GlobalConfig.Game.ResetDelaySeconds) * time.Second
	time.AfterFunc(delay, func() { h.resetRoom(roomID) })
}

func (h *Hub) resetRoom(roomID int64) {
	tbl, ok := h.services.Tables.Get(roomID)
	if !ok {
		return
	}
	if tbl.Stage() != game.StageFinished {
		return
	}
	tbl.ResetForNextHand()

	h.mu.Lock()
	delete(h.settled, roomID)
	h.mu.Unlock()

	h.broadcastState(roomID)
}

// Inbound message handling.

func (h *Hub) handleJoinRoom(c *client, roomID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.services.User.GetByID(ctx, c.userID)
	if err != nil {
		h.sendError(c.userID, "user not found")
		return
	}

	tbl, err := h.services.Room.JoinGame(ctx, roomID, user, -1)
	if err != nil {
		h.sendError(c.userID, fmt.Sprintf("join failed: %v", err))
		return
	}

	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[int64]bool)
	}
	h.rooms[roomID][c.userID] = true
	h.mu.Unlock()

	h.broadcastToRoom(roomID, Message{
		Type: "player_joined",
		Data: map[string]interface{}{
			"user_id":  user.ID,
			"username": user.Username,
			"chips":    user.Chips,
		},
	}, c.userID)
	h.sendTo(c.userID, Message{Type: "game_state", Data: tbl.Snapshot(c.userID)})
}

func (h *Hub) handleLeaveRoom(c *client, roomID int64) {
	h.mu.Lock()
	if members, ok := h.rooms[roomID]; ok {
		delete(members, c.userID)
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.services.Room.Leave(ctx, roomID, c.userID); err != nil {
		logger.Log.Warn("leave room failed", zap.Int64("userID", c.userID), zap.Error(err))
	}

	h.broadcastToRoom(roomID, Message{
		Type: "player_left",
		Data: map[string]interface{}{"user_id": c.userID},
	}, 0)
	h.broadcastState(roomID)
}

func (h *Hub) handleGameAction(c *client, roomID int64, action string, amount int64) {
	tbl, ok := h.services.Tables.Get(roomID)
	if !ok {
		h.sendError(c.userID, "game not found")
		return
	}

	result, err := tbl.Act(c.userID, game.Action(action), amount)
	if err != nil {
		// Rejected actions echo only to the actor.
		h.sendTo(c.userID, Message{
			Type: "game_action",
			Data: map[string]interface{}{
				"success":   false,
				"player_id": c.userID,
				"action":    action,
				"message":   err.Error(),
			},
		})
		return
	}

	h.broadcastToRoom(roomID, Message{
		Type: "game_action",
		Data: map[string]interface{}{
			"success":   true,
			"player_id": result.UserID,
			"action":    result.Action,
			"amount":    result.Amount,
			"message":   result.Message,
		},
	}, 0)
	h.broadcastState(roomID)
}

func (h *Hub) handleStartGame(c *client, roomID int64) {
	tbl, ok := h.services.Tables.Get(roomID)
	if !ok {
		h.sendError(c.userID, "game not found")
		return
	}
	if err := tbl.StartHand(); err != nil {
		h.sendError(c.userID, fmt.Sprintf("cannot start game: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.services.Room.SetStatus(ctx, roomID, "playing")

	h.broadcastToRoom(roomID, Message{
		Type: "game_started",
		Data: map[string]interface{}{"message": "game started"},
	}, 0)
	h.broadcastState(roomID)
}

func (h *Hub) handlePlayerReady(c *client, roomID int64, ready bool) {
	tbl, ok := h.services.Tables.Get(roomID)
	if !ok {
		h.sendError(c.userID, "game not found")
		return
	}
	if err := tbl.SetReady(c.userID, ready); err != nil {
		h.sendError(c.userID, "cannot set ready state")
		return
	}

	h.broadcastToRoom(roomID, Message{
		Type: "player_ready_changed",
		Data: map[string]interface{}{"user_id": c.userID, "ready": ready},
	}, 0)

	// Everyone ready auto-deals the next hand.
	if ready && tbl.ReadyToStart() {
		if err := tbl.StartHand(); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			h.services.Room.SetStatus(ctx, roomID, "playing")
			cancel()
			h.broadcastToRoom(roomID, Message{
				Type: "game_started",
				Data: map[string]interface{}{"message": "all players ready, dealing"},
			}, 0)
		}
	}
	h.broadcastState(roomID)
}

func (h *Hub) handleChat(c *client, roomID int64, text string) {
	h.broadcastToRoom(roomID, Message{
		Type: "chat_message",
		Data: map[string]interface{}{
			"user_id":   c.userID,
			"username":  c.username,
			"message":   text,
			"timestamp": time.Now().UnixMilli(),
		},
	}, 0)
}

func (h *Hub) handleShowCards(c *client, roomID int64) {
	tbl, ok := h.services.Tables.Get(roomID)
	if !ok {
		h.sendError(c.userID, "game not found")
		return
	}

	cards := tbl.HoleCards(c.userID)
	if len(cards) == 0 {
		h.sendError(c.userID, "no cards to show")
		return
	}

	h.broadcastToRoom(roomID, Message{
		Type: "show_cards",
		Data: map[string]interface{}{
			"player_id": c.userID,
			"username":  c.username,
			"cards":     cards,
		},
	}, 0)
}

func (h *Hub) sendError(userID int64, message string) {
	h.sendTo(userID, Message{
		Type: "error",
		Data: map[string]interface{}{"message": message},
	})
}
