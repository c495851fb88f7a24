package models

// Event はエンジンが発行するルーム宛ての通知です。
// To が空ならルーム全体、Except が指定されていればそのプレイヤーを除きます。
type Event struct {
	Type   string                 `json:"type"`
	RoomID string                 `json:"roomId"`
	To     string                 `json:"-"`
	Except string                 `json:"-"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

func (e Event) DeliversTo(playerID string) bool {
	if e.To != "" {
		return e.To == playerID
	}
	return e.Except != playerID
}
