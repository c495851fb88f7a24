package game

import (
	"time"

	"doodleserver/models"

	"go.uber.org/zap"
)

type JoinRequest struct {
	PlayerID string
	Name     string
	Password string
}

// JoinResult is what a joining or reconnecting player needs to render the room.
type JoinResult struct {
	Room      models.RoomSnapshot      `json:"room"`
	Player    models.Player            `json:"player"`
	Strokes   []map[string]interface{} `json:"strokes,omitempty"`
	Spectator bool                     `json:"spectator"`
}

// Join adds a player to the room. While a game is playing the player is
// admitted as a spectator if the room allows it.
func (e *Engine) Join(code string, req JoinRequest) (JoinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(req.PlayerID, ActionJoin); err != nil {
		return JoinResult{}, err
	}
	room, err := e.lookup(code)
	if err != nil {
		return JoinResult{}, err
	}
	name, err := validName(req.Name)
	if err != nil {
		return JoinResult{}, err
	}
	if room.Password != "" && room.Password != req.Password {
		return JoinResult{}, ErrWrongPassword
	}
	if room.IsBanned(req.PlayerID, name) {
		return JoinResult{}, ErrBanned
	}
	if p, _ := room.FindPlayer(req.PlayerID); p != nil {
		return JoinResult{}, ErrAlreadyJoined
	}
	if room.NameTaken(name) {
		return JoinResult{}, ErrDuplicateName
	}

	players, spectators := room.CountPlayers()
	spectator := false
	switch {
	case room.Status == models.StatusPlaying:
		if !room.Settings.AllowSpectators {
			return JoinResult{}, ErrGameInProgress
		}
		if spectators >= room.Settings.MaxSpectators {
			return JoinResult{}, ErrRoomFull
		}
		spectator = true
	case players >= room.Settings.MaxPlayers:
		if !room.Settings.AllowSpectators || spectators >= room.Settings.MaxSpectators {
			return JoinResult{}, ErrRoomFull
		}
		spectator = true
	}

	p := &models.Player{
		ID:          req.PlayerID,
		Name:        name,
		IsSpectator: spectator,
		JoinedAt:    e.now(),
	}
	room.Players = append(room.Players, p)
	if room.HostID == "" {
		e.setHost(room, p)
	}
	room.EmptySince = time.Time{}
	e.timers.Cancel(room.ID+presenceScope, keyEmpty)
	e.touch(room)

	if spectator {
		e.emit(room, EventSpectatorJoined, map[string]interface{}{"player": playerInfo(p)})
	} else {
		e.emit(room, EventPlayerJoined, map[string]interface{}{"player": playerInfo(p)})
	}
	e.emitPlayers(room)
	e.logger.Info("player joined",
		zap.String("room", room.ID),
		zap.String("player", p.ID),
		zap.Bool("spectator", spectator))

	e.resume(room)
	e.mirror(room)
	return e.joinResult(room, p), nil
}

func (e *Engine) joinResult(room *models.Room, p *models.Player) JoinResult {
	res := JoinResult{Room: e.snapshot(room), Player: *p, Spectator: p.IsSpectator}
	if _, ok := room.Drawing(); ok && len(room.Strokes) > 0 {
		res.Strokes = append([]map[string]interface{}(nil), room.Strokes...)
	}
	return res
}

// Leave removes the player immediately.
func (e *Engine) Leave(code, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	if p, _ := room.FindPlayer(playerID); p == nil {
		return ErrPlayerNotFound
	}
	e.removePlayer(room, playerID, LeaveVoluntary)
	return nil
}

// Disconnect marks the player as temporarily disconnected. The player keeps
// their seat until the reconnect grace expires, but stops counting as active.
func (e *Engine) Disconnect(code, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	p, _ := room.FindPlayer(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.IsTemporarilyDisconnected {
		return nil
	}
	grace := room.Settings.ReconnectGrace.Std()
	if grace <= 0 {
		e.removePlayer(room, playerID, LeaveDisconnected)
		return nil
	}

	p.IsTemporarilyDisconnected = true
	id := room.ID
	e.timers.Schedule(id+presenceScope, reconnectKey(playerID), grace, func() {
		e.expireReconnect(id, playerID)
	})
	e.emit(room, EventPlayerDisconnected, map[string]interface{}{"playerId": playerID})
	e.emitPlayers(room)
	e.logger.Info("player disconnected", zap.String("room", room.ID), zap.String("player", playerID))

	e.afterDeparture(room, playerID)
	e.mirror(room)
	return nil
}

func (e *Engine) expireReconnect(code, playerID string) {
	room, ok := e.rooms[code]
	if !ok {
		return
	}
	if p, _ := room.FindPlayer(playerID); p == nil || !p.IsTemporarilyDisconnected {
		return
	}
	e.removePlayer(room, playerID, LeaveDisconnected)
}

// Reconnect restores a temporarily disconnected player with their score and
// flags intact.
func (e *Engine) Reconnect(code, playerID string) (JoinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return JoinResult{}, err
	}
	p, _ := room.FindPlayer(playerID)
	if p == nil {
		return JoinResult{}, ErrPlayerNotFound
	}
	e.timers.Cancel(room.ID+presenceScope, reconnectKey(playerID))
	if p.IsTemporarilyDisconnected {
		p.IsTemporarilyDisconnected = false
		e.touch(room)
		e.emit(room, EventPlayerReconnected, map[string]interface{}{"playerId": playerID})
		e.emitPlayers(room)
		e.logger.Info("player reconnected", zap.String("room", room.ID), zap.String("player", playerID))
		e.resume(room)
		e.mirror(room)
	}
	return e.joinResult(room, p), nil
}

// Kick bans the target from the room and removes them. Host only.
func (e *Engine) Kick(code, hostID, targetID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	if room.HostID != hostID {
		return ErrNotHost
	}
	target, _ := room.FindPlayer(targetID)
	if target == nil || targetID == hostID {
		return ErrPlayerNotFound
	}
	room.Banned[targetID] = true
	room.Banned[models.BanKey(target.Name)] = true
	e.removePlayer(room, targetID, LeaveKicked)
	return nil
}

func (e *Engine) removePlayer(room *models.Room, playerID, reason string) {
	p, idx := room.FindPlayer(playerID)
	if p == nil {
		return
	}
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	if idx <= room.DrawerCursor {
		room.DrawerCursor--
	}
	e.timers.Cancel(room.ID+presenceScope, reconnectKey(playerID))
	e.touch(room)

	e.emit(room, EventPlayerLeft, map[string]interface{}{
		"playerId": playerID,
		"name":     p.Name,
		"reason":   reason,
	})
	e.logger.Info("player left",
		zap.String("room", room.ID),
		zap.String("player", playerID),
		zap.String("reason", reason))

	if len(room.Players) == 0 {
		e.roomEmptied(room)
		return
	}
	if room.HostID == playerID {
		e.setHost(room, nextHost(room))
		e.emit(room, EventHostChanged, map[string]interface{}{"hostId": room.HostID})
	}
	e.emitPlayers(room)
	if !p.IsTemporarilyDisconnected {
		e.afterDeparture(room, playerID)
	}
	e.mirror(room)
}

// afterDeparture applies the game consequences of a player no longer being
// active. The drawer leaving ends the round, even one suspended by a pause.
// Too few players pauses the game unless waiting spectators fill the seats,
// and a round where everyone left has guessed ends early.
func (e *Engine) afterDeparture(room *models.Room, playerID string) {
	if d, ok := room.Drawing(); ok && d.Drawer == playerID {
		e.endRound(room, models.ReasonDrawerLeft)
		return
	}
	if paused, ok := room.Phase.(*models.Paused); ok && paused.Suspended != nil && paused.Suspended.Drawer == playerID {
		e.closeSuspended(room, paused, models.ReasonDrawerLeft)
		return
	}
	if room.Status == models.StatusPlaying && len(room.ActivePlayers()) < room.Settings.MinPlayers {
		e.pause(room, "not-enough-players")
		e.resume(room)
		return
	}
	if _, ok := room.Drawing(); ok && e.allGuessed(room) {
		e.endRound(room, models.ReasonGuess)
	}
}

func (e *Engine) roomEmptied(room *models.Room) {
	e.timers.CancelAll(room.ID)
	room.HostID = ""
	room.EmptySince = e.now()
	if room.Status == models.StatusPlaying || room.Status == models.StatusPaused {
		room.Status = models.StatusWaiting
		room.Phase = &models.Waiting{}
	}
	id := room.ID
	e.timers.Schedule(id+presenceScope, keyEmpty, e.emptyRoomGrace, func() {
		if room, ok := e.rooms[id]; ok && len(room.Players) == 0 {
			e.deleteRoom(room, "empty")
		}
	})
	e.mirror(room)
}

func (e *Engine) setHost(room *models.Room, host *models.Player) {
	for _, p := range room.Players {
		p.IsHost = p == host
	}
	room.HostID = ""
	if host != nil {
		room.HostID = host.ID
	}
}

// nextHost picks the earliest-joined player, preferring connected ones.
func nextHost(room *models.Room) *models.Player {
	for _, p := range room.Players {
		if !p.IsTemporarilyDisconnected {
			return p
		}
	}
	if len(room.Players) > 0 {
		return room.Players[0]
	}
	return nil
}

// promoteSpectators moves connected spectators into free player seats in
// join order.
func (e *Engine) promoteSpectators(room *models.Room) {
	players, _ := room.CountPlayers()
	promoted := false
	for _, p := range room.Players {
		if players >= room.Settings.MaxPlayers {
			break
		}
		if p.IsSpectator && !p.IsTemporarilyDisconnected {
			p.IsSpectator = false
			players++
			promoted = true
			e.emit(room, EventSpectatorPromoted, map[string]interface{}{"player": playerInfo(p)})
		}
	}
	if promoted {
		e.emitPlayers(room)
	}
}
