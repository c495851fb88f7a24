package models

import (
	"strings"
	"time"
)

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusPaused   RoomStatus = "paused"
	StatusFinished RoomStatus = "finished"
)

type WordHistoryEntry struct {
	Round     int      `json:"round"`
	Word      string   `json:"word"`
	Drawer    string   `json:"drawer"`
	GuessedBy []string `json:"guessedBy"`
}

// Room は1つのゲームルームの状態です。エンジンのみが変更します。
type Room struct {
	ID          string
	Status      RoomStatus
	Phase       Phase
	Players     []*Player // 参加順
	HostID      string
	Round       int
	MaxRounds   int
	Difficulty  string
	Category    string
	CustomWords []string
	Settings    Settings
	Private     bool
	Password    string
	Banned      map[string]bool
	WordHistory []WordHistoryEntry
	Strokes     []map[string]interface{}

	LastDrawerID string
	DrawerCursor int // 直前の描き手の Players 上の位置。未選出なら -1

	CreatedAt    time.Time
	LastActivity time.Time
	EmptySince   time.Time
}

func (r *Room) FindPlayer(id string) (*Player, int) {
	for i, p := range r.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// ActivePlayers returns non-spectator, connected players in join order.
func (r *Room) ActivePlayers() []*Player {
	var active []*Player
	for _, p := range r.Players {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active
}

func (r *Room) CountPlayers() (players, spectators int) {
	for _, p := range r.Players {
		if p.IsSpectator {
			spectators++
		} else {
			players++
		}
	}
	return players, spectators
}

// NameTaken reports whether a connected player already uses name, ignoring case.
func (r *Room) NameTaken(name string) bool {
	for _, p := range r.Players {
		if !p.IsTemporarilyDisconnected && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Room) IsBanned(playerID, name string) bool {
	return r.Banned[playerID] || r.Banned[BanKey(name)]
}

// BanKey normalizes a player name for the ban list.
func BanKey(name string) string {
	return "name:" + strings.ToLower(strings.TrimSpace(name))
}

func (r *Room) Drawing() (*Drawing, bool) {
	d, ok := r.Phase.(*Drawing)
	return d, ok
}

func (r *Room) CurrentDrawer() string {
	if d, ok := r.Drawing(); ok {
		return d.Drawer
	}
	return ""
}

func (r *Room) CurrentWord() string {
	if d, ok := r.Drawing(); ok {
		return d.Word
	}
	return ""
}

// CurrentEntry returns the history entry of the latest round.
func (r *Room) CurrentEntry() *WordHistoryEntry {
	if len(r.WordHistory) == 0 {
		return nil
	}
	return &r.WordHistory[len(r.WordHistory)-1]
}

func (r *Room) UsedWords() []string {
	used := make([]string, 0, len(r.WordHistory))
	for _, entry := range r.WordHistory {
		used = append(used, entry.Word)
	}
	return used
}

func (r *Room) HasGuessed(playerID string) bool {
	entry := r.CurrentEntry()
	if entry == nil {
		return false
	}
	for _, id := range entry.GuessedBy {
		if id == playerID {
			return true
		}
	}
	return false
}
