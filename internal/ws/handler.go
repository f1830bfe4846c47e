package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	pkgAuth "holdem-service/pkg/auth"
	"holdem-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// HandleWS authenticates the token query parameter and hands the connection
// to the hub.
func (h *Hub) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := pkgAuth.ParseUserToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := newClient(conn, claims.SubjectID, claims.Username, h)
	h.register(client)
	client.run()
}

type client struct {
	conn      *websocket.Conn
	userID    int64
	username  string
	hub       *Hub
	outbound  chan Message
	done      chan struct{}
	closeOnce sync.Once
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, userID int64, username string, hub *Hub) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	c := &client{
		conn:      conn,
		userID:    userID,
		username:  username,
		hub:       hub,
		outbound:  make(chan Message, 16),
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
	return c
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) send(msg Message) {
	select {
	case c.outbound <- msg:
	default:
		logger.Log.Warn("ws outbound channel full", zap.Int64("userID", c.userID))
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

type inboundData struct {
	RoomID  int64  `json:"room_id"`
	Action  string `json:"action"`
	Amount  int64  `json:"amount"`
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

func (c *client) readPump() {
	defer func() {
		c.close()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		mt, raw, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.Int64("userID", c.userID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string      `json:"type"`
			Data inboundData `json:"data"`
		}
		if err := json.Unmarshal(raw, &incoming); err != nil {
			c.send(Message{Type: "error", Data: gin.H{"message": "invalid payload"}})
			continue
		}

		c.dispatch(incoming.Type, incoming.Data)
	}
}

func (c *client) dispatch(msgType string, data inboundData) {
	switch msgType {
	case "join_room":
		if data.RoomID > 0 {
			c.hub.handleJoinRoom(c, data.RoomID)
		}
	case "leave_room":
		if data.RoomID > 0 {
			c.hub.handleLeaveRoom(c, data.RoomID)
		}
	case "game_action":
		if data.RoomID > 0 && data.Action != "" {
			c.hub.handleGameAction(c, data.RoomID, data.Action, data.Amount)
		}
	case "start_game":
		if data.RoomID > 0 {
			c.hub.handleStartGame(c, data.RoomID)
		}
	case "player_ready":
		if data.RoomID > 0 {
			c.hub.handlePlayerReady(c, data.RoomID, data.Ready)
		}
	case "chat":
		if data.RoomID > 0 && data.Message != "" {
			c.hub.handleChat(c, data.RoomID, data.Message)
		}
	case "show_cards":
		if data.RoomID > 0 {
			c.hub.handleShowCards(c, data.RoomID)
		}
	case "ping":
		c.send(Message{Type: "pong", Data: gin.H{}})
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outbound:
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.Int64("userID", c.userID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
