package connection

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"doodleserver/game"
	"doodleserver/models"
)

// Hub はルームごとの接続を保持し、エンジンのイベントを各クライアントへ配信します。
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Client
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{rooms: make(map[string]map[string]*Client), logger: logger}
}

// Attach registers c as the connection for its player in roomID. A previous
// connection for the same player is replaced and closed.
func (h *Hub) Attach(roomID string, c *Client) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[roomID] = members
	}
	old := members[c.PlayerID]
	members[c.PlayerID] = c
	h.mu.Unlock()

	c.setRoom(roomID)
	if old != nil && old != c {
		old.Close()
	}
}

// Detach removes c from roomID if it is still the registered connection.
func (h *Hub) Detach(roomID string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[roomID]
	if members == nil || members[c.PlayerID] != c {
		return false
	}
	delete(members, c.PlayerID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	return true
}

func (h *Hub) Clients(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish implements game.Sink.
func (h *Hub) Publish(ev models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	for pid, c := range h.rooms[ev.RoomID] {
		if !ev.DeliversTo(pid) {
			continue
		}
		if !c.enqueue(payload) {
			h.logger.Warn("Dropping event for slow client",
				zap.String("room", ev.RoomID), zap.String("player", pid), zap.String("type", ev.Type))
		}
	}
	h.mu.RUnlock()

	switch ev.Type {
	case game.EventRoomDeleted:
		h.dropRoom(ev.RoomID)
	case game.EventPlayerLeft:
		// 自分から退出した接続は leaveCurrent で切り離し済み。ここで
		// 外すと同じルームへの再参加を取り消してしまう
		pid, _ := ev.Data["playerId"].(string)
		if reason, _ := ev.Data["reason"].(string); pid != "" && reason == game.LeaveKicked {
			h.dropPlayer(ev.RoomID, pid)
		}
	}
}

func (h *Hub) dropRoom(roomID string) {
	h.mu.Lock()
	members := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()
	for _, c := range members {
		c.leaveRoom(roomID)
	}
}

// dropPlayer forgets a kicked player. The socket stays open so the client
// can create or join another room. Kicked players are banned from the room,
// so a late event cannot hit a newer attachment of the same player.
func (h *Hub) dropPlayer(roomID, playerID string) {
	h.mu.Lock()
	c := h.rooms[roomID][playerID]
	if c != nil {
		delete(h.rooms[roomID], playerID)
		if len(h.rooms[roomID]) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()
	if c != nil {
		c.leaveRoom(roomID)
	}
}
