package models

import "time"

// Player はルームに参加しているプレイヤーです。IDは接続単位で発行されます。
type Player struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Score                     int       `json:"score"`
	IsHost                    bool      `json:"isHost"`
	IsSpectator               bool      `json:"isSpectator"`
	IsTemporarilyDisconnected bool      `json:"isTemporarilyDisconnected"`
	JoinedAt                  time.Time `json:"joinedAt"`
}

// Active reports whether the player takes part in rounds right now.
func (p *Player) Active() bool {
	return !p.IsSpectator && !p.IsTemporarilyDisconnected
}
