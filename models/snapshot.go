package models

import "time"

// RoomSnapshot is the read-only view of a room handed to clients, the cache
// mirror and the admin API. It never contains the secret word.
type RoomSnapshot struct {
	ID         string     `json:"id"`
	Status     RoomStatus `json:"status"`
	Phase      PhaseKind  `json:"phase"`
	Round      int        `json:"round"`
	MaxRounds  int        `json:"maxRounds"`
	HostID     string     `json:"hostId"`
	Drawer     string     `json:"drawer,omitempty"`
	TimeLeft   int        `json:"timeLeft,omitempty"`
	Players    []Player   `json:"players"`
	Private    bool       `json:"isPrivate"`
	Difficulty string     `json:"difficulty"`
	Category   string     `json:"category,omitempty"`
	Settings   Settings   `json:"settings"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type RoomStats struct {
	ID          string     `json:"id"`
	Status      RoomStatus `json:"status"`
	Players     int        `json:"players"`
	Spectators  int        `json:"spectators"`
	Connected   int        `json:"connected"`
	Round       int        `json:"round"`
	MaxRounds   int        `json:"maxRounds"`
	Private     bool       `json:"isPrivate"`
	WordsPlayed int        `json:"wordsPlayed"`
	Uptime      string     `json:"uptime"`
	IdleFor     string     `json:"idleFor"`
}

type GlobalStats struct {
	TotalRooms   int    `json:"totalRooms"`
	WaitingRooms int    `json:"waitingRooms"`
	ActiveRooms  int    `json:"activeRooms"`
	PausedRooms  int    `json:"pausedRooms"`
	TotalPlayers int    `json:"totalPlayers"`
	RoomsCreated int    `json:"roomsCreated"`
	RoomsDeleted int    `json:"roomsDeleted"`
	PendingTimer int    `json:"pendingTimers"`
	Uptime       string `json:"uptime"`
}

type PublicRoom struct {
	ID         string `json:"id"`
	Host       string `json:"host"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	MaxRounds  int    `json:"maxRounds"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category,omitempty"`
}
