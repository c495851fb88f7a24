package connection

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"doodleserver/game"
	"doodleserver/models"
)

const (
	actionCreate  = "create-room"
	actionLeave   = "leave-room"
	actionKick    = "kick-player"
	actionSession = "session"
)

// inbound はクライアントから届くメッセージです。type 以外は種類によって使い分けます。
type inbound struct {
	Type     string                 `json:"type"`
	RoomID   string                 `json:"roomId"`
	Name     string                 `json:"name"`
	Password string                 `json:"password"`
	Text     string                 `json:"text"`
	Message  string                 `json:"message"`
	Target   string                 `json:"targetId"`
	Config   models.RoomConfig      `json:"config"`
	Stroke   map[string]interface{} `json:"stroke"`
}

func (s *Server) handle(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Info("Error decoding message", zap.String("player", c.PlayerID), zap.Error(err))
		s.reply(c, map[string]interface{}{"type": "error", "code": "bad-message", "message": "malformed message"})
		return
	}

	switch msg.Type {
	case actionCreate:
		s.createRoom(c, msg)
	case game.ActionJoin:
		s.joinRoom(c, msg)
	case actionSession:
		s.session(c)
	case actionLeave:
		s.leaveRoom(c)
	default:
		roomID := c.Room()
		if roomID == "" {
			s.reply(c, map[string]interface{}{"type": "error", "action": msg.Type, "code": "not-in-room", "message": "join a room first"})
			return
		}
		s.roomAction(c, roomID, msg)
	}
}

func (s *Server) roomAction(c *Client, roomID string, msg inbound) {
	var err error
	switch msg.Type {
	case game.ActionStart:
		err = s.engine.StartGame(roomID, c.PlayerID)
	case game.ActionRestart:
		err = s.engine.Restart(roomID, c.PlayerID)
	case game.ActionDraw:
		err = s.engine.DrawLine(roomID, c.PlayerID, msg.Stroke)
	case game.ActionClearCanvas:
		err = s.engine.ClearCanvas(roomID, c.PlayerID)
	case game.ActionGuess:
		var res game.GuessResult
		res, err = s.engine.SubmitGuess(roomID, c.PlayerID, firstNonEmpty(msg.Text, msg.Message))
		if err == nil {
			s.reply(c, map[string]interface{}{"type": "guess-result", "correct": res.Correct, "points": res.Points, "ignored": res.Ignored})
		}
	case game.ActionChat:
		err = s.engine.Chat(roomID, c.PlayerID, firstNonEmpty(msg.Message, msg.Text))
	case game.ActionHistory:
		var history []models.WordHistoryEntry
		history, err = s.engine.WordHistory(roomID, c.PlayerID)
		if err == nil {
			s.reply(c, map[string]interface{}{"type": "word-history", "roomId": roomID, "words": history})
		}
	case actionKick:
		err = s.engine.Kick(roomID, c.PlayerID, msg.Target)
	default:
		s.logger.Info("Received unknown message type", zap.String("type", msg.Type), zap.String("player", c.PlayerID))
		s.reply(c, map[string]interface{}{"type": "error", "action": msg.Type, "code": "unknown-type", "message": "unknown message type"})
		return
	}
	if err != nil {
		s.fail(c, msg.Type, roomID, err)
	}
}

func (s *Server) createRoom(c *Client, msg inbound) {
	s.leaveCurrent(c)
	snap, err := s.engine.CreateRoom(c.PlayerID, msg.Name, msg.Config)
	if err != nil {
		s.fail(c, actionCreate, "", err)
		return
	}
	s.hub.Attach(snap.ID, c)
	out := map[string]interface{}{"type": "room-created", "playerId": c.PlayerID, "room": snap}
	s.withTicket(c, snap.ID, out)
	s.reply(c, out)
}

// joinRoom attaches before joining so the player sees their own join events.
func (s *Server) joinRoom(c *Client, msg inbound) {
	code := strings.ToUpper(strings.TrimSpace(msg.RoomID))
	if c.Room() == code {
		s.fail(c, game.ActionJoin, code, game.ErrAlreadyJoined)
		return
	}
	s.leaveCurrent(c)
	s.hub.Attach(code, c)
	res, err := s.engine.Join(code, game.JoinRequest{PlayerID: c.PlayerID, Name: msg.Name, Password: msg.Password})
	if err != nil {
		s.hub.Detach(code, c)
		c.leaveRoom(code)
		s.fail(c, game.ActionJoin, code, err)
		return
	}
	s.joined(c, "room-joined", res)
}

// session hands out a fresh reconnect ticket for the current room.
func (s *Server) session(c *Client) {
	roomID := c.Room()
	if roomID == "" {
		s.reply(c, map[string]interface{}{"type": "error", "action": actionSession, "code": "not-in-room", "message": "join a room first"})
		return
	}
	out := map[string]interface{}{"type": "session", "roomId": roomID, "playerId": c.PlayerID}
	s.withTicket(c, roomID, out)
	s.reply(c, out)
}

func (s *Server) leaveRoom(c *Client) {
	if c.Room() == "" {
		return
	}
	s.leaveCurrent(c)
	s.reply(c, map[string]interface{}{"type": "left-room"})
}

func (s *Server) leaveCurrent(c *Client) {
	roomID := c.Room()
	if roomID == "" {
		return
	}
	s.hub.Detach(roomID, c)
	c.leaveRoom(roomID)
	if err := s.engine.Leave(roomID, c.PlayerID); err != nil {
		s.logger.Debug("Leave on room switch", zap.String("room", roomID), zap.Error(err))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
