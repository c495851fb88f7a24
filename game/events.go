package game

import (
	"strings"

	"doodleserver/models"
)

// Outbound event types.
const (
	EventPlayerJoined       = "player-joined"
	EventPlayerLeft         = "player-left"
	EventPlayersUpdate      = "players-update"
	EventPlayerDisconnected = "player-disconnected"
	EventPlayerReconnected  = "player-reconnected"
	EventCountdown          = "countdown"
	EventRoundStart         = "round-start"
	EventHint               = "hint"
	EventTimerUpdate        = "timer-update"
	EventWordReveal         = "word-reveal"
	EventRoundEnded         = "round-ended"
	EventCorrectGuess       = "correct-guess"
	EventGameStarted        = "game-started"
	EventGameEnded          = "game-ended"
	EventGamePaused         = "game-paused"
	EventGameResumed        = "game-resumed"
	EventGameRestarted      = "game-restarted"
	EventSpectatorJoined    = "spectator-joined"
	EventSpectatorPromoted  = "spectator-promoted"
	EventHostChanged        = "host-changed"
	EventRoomNotFound       = "room-not-found"
	EventRoomDeleted        = "room-deleted"
	EventClearCanvas        = "clear-canvas"
	EventDrawLine           = "draw-line"
	EventChatMessage        = "chat-message"
)

// Reasons carried by player-left.
const (
	LeaveVoluntary    = "left"
	LeaveDisconnected = "disconnected"
	LeaveKicked       = "kicked"
)

// Rate limiter action names, matching the inbound message types.
const (
	ActionJoin        = "join-room"
	ActionStart       = "start-game"
	ActionDraw        = "draw-line"
	ActionGuess       = "guess"
	ActionClearCanvas = "clear-canvas"
	ActionChat        = "chat-message"
	ActionHistory     = "get-word-history"
	ActionRestart     = "restart-game"
)

func (e *Engine) emit(room *models.Room, typ string, data map[string]interface{}) {
	e.sink.Publish(models.Event{Type: typ, RoomID: room.ID, Data: data})
}

func (e *Engine) emitTo(room *models.Room, playerID, typ string, data map[string]interface{}) {
	e.sink.Publish(models.Event{Type: typ, RoomID: room.ID, To: playerID, Data: data})
}

func (e *Engine) emitExcept(room *models.Room, playerID, typ string, data map[string]interface{}) {
	e.sink.Publish(models.Event{Type: typ, RoomID: room.ID, Except: playerID, Data: data})
}

func (e *Engine) emitPlayers(room *models.Room) {
	e.emit(room, EventPlayersUpdate, map[string]interface{}{
		"players": playerList(room),
		"hostId":  room.HostID,
	})
}

func playerList(room *models.Room) []models.Player {
	players := make([]models.Player, len(room.Players))
	for i, p := range room.Players {
		players[i] = *p
	}
	return players
}

func playerInfo(p *models.Player) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"score":       p.Score,
		"isHost":      p.IsHost,
		"isSpectator": p.IsSpectator,
	}
}

// maskWord hides every letter of word, keeping spaces.
func maskWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		if r == ' ' {
			b.WriteRune(' ')
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
