package game

import (
	"sort"
	"time"

	"doodleserver/models"
)

func (e *Engine) RoomStats(code string) (models.RoomStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return models.RoomStats{}, err
	}
	now := e.now()
	players, spectators := room.CountPlayers()
	connected := 0
	for _, p := range room.Players {
		if !p.IsTemporarilyDisconnected {
			connected++
		}
	}
	return models.RoomStats{
		ID:          room.ID,
		Status:      room.Status,
		Players:     players,
		Spectators:  spectators,
		Connected:   connected,
		Round:       room.Round,
		MaxRounds:   room.MaxRounds,
		Private:     room.Private,
		WordsPlayed: len(room.WordHistory),
		Uptime:      now.Sub(room.CreatedAt).Truncate(time.Second).String(),
		IdleFor:     now.Sub(room.LastActivity).Truncate(time.Second).String(),
	}, nil
}

func (e *Engine) GlobalStats() models.GlobalStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := models.GlobalStats{
		TotalRooms:   len(e.rooms),
		RoomsCreated: e.roomsCreated,
		RoomsDeleted: e.roomsDeleted,
		PendingTimer: e.timers.Total(),
		Uptime:       e.now().Sub(e.startedAt).Truncate(time.Second).String(),
	}
	for _, room := range e.rooms {
		stats.TotalPlayers += len(room.Players)
		switch room.Status {
		case models.StatusWaiting:
			stats.WaitingRooms++
		case models.StatusPlaying:
			stats.ActiveRooms++
		case models.StatusPaused:
			stats.PausedRooms++
		}
	}
	return stats
}

// PublicRooms lists non-private rooms still waiting for players, oldest first.
func (e *Engine) PublicRooms() []models.PublicRoom {
	e.mu.Lock()
	defer e.mu.Unlock()
	var rooms []*models.Room
	for _, room := range e.rooms {
		if !room.Private && room.Status == models.StatusWaiting && len(room.Players) > 0 {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})

	list := make([]models.PublicRoom, 0, len(rooms))
	for _, room := range rooms {
		players, _ := room.CountPlayers()
		host := ""
		if p, _ := room.FindPlayer(room.HostID); p != nil {
			host = p.Name
		}
		list = append(list, models.PublicRoom{
			ID:         room.ID,
			Host:       host,
			Players:    players,
			MaxPlayers: room.Settings.MaxPlayers,
			MaxRounds:  room.MaxRounds,
			Difficulty: room.Difficulty,
			Category:   room.Category,
		})
	}
	return list
}
