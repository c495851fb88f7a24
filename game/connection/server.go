package connection

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"doodleserver/game"
	"doodleserver/models"
)

// Engine is the part of *game.Engine the socket layer drives.
type Engine interface {
	CreateRoom(hostID, hostName string, cfg models.RoomConfig) (models.RoomSnapshot, error)
	Join(code string, req game.JoinRequest) (game.JoinResult, error)
	Leave(code, playerID string) error
	Disconnect(code, playerID string) error
	Reconnect(code, playerID string) (game.JoinResult, error)
	Kick(code, hostID, targetID string) error
	StartGame(code, playerID string) error
	Restart(code, playerID string) error
	SubmitGuess(code, playerID, text string) (game.GuessResult, error)
	Chat(code, playerID, text string) error
	DrawLine(code, playerID string, stroke map[string]interface{}) error
	ClearCanvas(code, playerID string) error
	WordHistory(code, playerID string) ([]models.WordHistoryEntry, error)
}

// Tickets issues and checks reconnect tickets.
type Tickets interface {
	Issue(roomID, playerID string) (string, error)
	Parse(token string) (roomID, playerID string, err error)
}

type Server struct {
	engine   Engine
	hub      *Hub
	tickets  Tickets
	logger   *zap.Logger
	upgrader websocket.Upgrader
	newID    func() string
}

// NewServer wires the socket layer. allowOrigin decides which browser
// origins may open a socket; nil accepts any.
func NewServer(engine Engine, hub *Hub, tickets Tickets, logger *zap.Logger, allowOrigin func(string) bool) *Server {
	s := &Server{
		engine:  engine,
		hub:     hub,
		tickets: tickets,
		logger:  logger,
		newID:   func() string { return uuid.New().String() },
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowOrigin == nil {
				return true
			}
			return allowOrigin(origin)
		},
	}
	return s
}

// ServeWS はHTTP接続をWebSocketにアップグレードし、読み書きのゴルーチンを起動します。
// ?token= に再接続チケットがあれば、そのプレイヤーとしてルームに戻ります。
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := s.newID()
	var resumeRoom string
	if token := r.URL.Query().Get("token"); token != "" && s.tickets != nil {
		roomID, pid, err := s.tickets.Parse(token)
		if err != nil {
			s.logger.Info("Rejected reconnect ticket", zap.Error(err))
			http.Error(w, "Invalid or expired ticket", http.StatusUnauthorized)
			return
		}
		playerID, resumeRoom = pid, roomID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}
	c := newClient(conn, playerID)
	s.logger.Info("New client connected", zap.String("player", playerID), zap.String("remote", r.RemoteAddr))

	go c.writePump(s.logger)
	if resumeRoom != "" {
		s.resume(c, resumeRoom)
	} else {
		s.reply(c, map[string]interface{}{"type": "connected", "playerId": playerID})
	}
	go func() {
		c.readPump(func(raw []byte) { s.handle(c, raw) }, s.logger)
		s.closed(c)
	}()
}

// closed runs once the read side of c is gone.
func (s *Server) closed(c *Client) {
	roomID := c.Room()
	if roomID == "" || !s.hub.Detach(roomID, c) {
		return
	}
	if err := s.engine.Disconnect(roomID, c.PlayerID); err != nil && !errors.Is(err, game.ErrRoomNotFound) && !errors.Is(err, game.ErrPlayerNotFound) {
		s.logger.Warn("Disconnect failed", zap.String("room", roomID), zap.String("player", c.PlayerID), zap.Error(err))
	}
	s.logger.Info("Client removed", zap.String("room", roomID), zap.String("player", c.PlayerID))
}

func (s *Server) resume(c *Client, roomID string) {
	s.hub.Attach(roomID, c)
	res, err := s.engine.Reconnect(roomID, c.PlayerID)
	if err != nil {
		s.hub.Detach(roomID, c)
		c.setRoom("")
		s.fail(c, "reconnect", roomID, err)
		return
	}
	s.joined(c, "reconnected", res)
}

func (s *Server) joined(c *Client, typ string, res game.JoinResult) {
	msg := map[string]interface{}{
		"type":      typ,
		"playerId":  c.PlayerID,
		"room":      res.Room,
		"player":    res.Player,
		"spectator": res.Spectator,
	}
	if len(res.Strokes) > 0 {
		msg["strokes"] = res.Strokes
	}
	s.withTicket(c, res.Room.ID, msg)
	s.reply(c, msg)
}

func (s *Server) withTicket(c *Client, roomID string, msg map[string]interface{}) {
	if s.tickets == nil {
		return
	}
	ticket, err := s.tickets.Issue(roomID, c.PlayerID)
	if err != nil {
		s.logger.Error("Failed to issue reconnect ticket", zap.String("player", c.PlayerID), zap.Error(err))
		return
	}
	msg["ticket"] = ticket
}

func (s *Server) reply(c *Client, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}
	if !c.enqueue(payload) {
		s.logger.Warn("Dropping reply for slow client", zap.String("player", c.PlayerID))
	}
}

// fail sends an error to the client. An unknown room on join is reported
// with its own message type so clients can fall back to the lobby.
func (s *Server) fail(c *Client, action, roomID string, err error) {
	code := game.ErrorCode(err)
	if code == "internal" {
		s.logger.Error("Action failed", zap.String("action", action), zap.String("player", c.PlayerID), zap.Error(err))
	}
	if code == game.ErrRoomNotFound.Code && (action == game.ActionJoin || action == "reconnect") {
		s.reply(c, map[string]interface{}{"type": game.EventRoomNotFound, "roomId": roomID})
		return
	}
	msg := map[string]interface{}{
		"type":    "error",
		"action":  action,
		"code":    code,
		"message": err.Error(),
	}
	var rl *game.RateLimitedError
	if errors.As(err, &rl) {
		msg["retryAfter"] = rl.RetryAfter.Seconds()
	}
	s.reply(c, msg)
}
