package models

import (
	"errors"
	"fmt"
	"time"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Hint kinds.
const (
	HintLength      = "length"
	HintFirstLetter = "first-letter"
	HintLastLetter  = "last-letter"
	HintVowel       = "vowel"
	HintCategory    = "category"
	HintPattern     = "pattern"
)

// Settings はルームごとのゲーム設定です。
type Settings struct {
	DrawingTimeout  Duration `json:"drawingTimeout"`
	CountdownTicks  int      `json:"countdownTicks"`
	RoundEndDelay   Duration `json:"roundEndDelay"`
	DrawerLeftDelay Duration `json:"drawerLeftDelay"`
	ReconnectGrace  Duration `json:"reconnectGrace"`
	MinPlayers      int      `json:"minPlayers"`
	MaxPlayers      int      `json:"maxPlayers"`
	MaxSpectators   int      `json:"maxSpectators"`
	AllowHints      bool     `json:"allowHints"`
	AllowChat       bool     `json:"allowChat"`
	AllowSpectators bool     `json:"allowSpectators"`
	EndOnFirstGuess bool     `json:"endOnFirstGuess"`
	HintKinds       []string `json:"hintKinds"`
}

func DefaultSettings() Settings {
	return Settings{
		DrawingTimeout:  Duration(80 * time.Second),
		CountdownTicks:  3,
		RoundEndDelay:   Duration(5 * time.Second),
		DrawerLeftDelay: Duration(time.Second),
		ReconnectGrace:  Duration(30 * time.Second),
		MinPlayers:      2,
		MaxPlayers:      8,
		MaxSpectators:   4,
		AllowHints:      true,
		AllowChat:       true,
		AllowSpectators: true,
		HintKinds:       []string{HintLength, HintFirstLetter, HintPattern},
	}
}

var validHintKinds = map[string]bool{
	HintLength: true, HintFirstLetter: true, HintLastLetter: true,
	HintVowel: true, HintCategory: true, HintPattern: true,
}

func (s Settings) Validate() error {
	if s.DrawingTimeout.Std() < 15*time.Second || s.DrawingTimeout.Std() > 5*time.Minute {
		return fmt.Errorf("drawingTimeout must be between 15s and 5m, got %s", s.DrawingTimeout.Std())
	}
	if s.CountdownTicks < 0 || s.CountdownTicks > 10 {
		return errors.New("countdownTicks must be between 0 and 10")
	}
	if s.RoundEndDelay < 0 || s.DrawerLeftDelay < 0 || s.ReconnectGrace < 0 {
		return errors.New("delays must not be negative")
	}
	if s.MinPlayers < 2 {
		return errors.New("minPlayers must be at least 2")
	}
	if s.MaxPlayers < s.MinPlayers || s.MaxPlayers > 20 {
		return fmt.Errorf("maxPlayers must be between %d and 20", s.MinPlayers)
	}
	if s.MaxSpectators < 0 || s.MaxSpectators > 20 {
		return errors.New("maxSpectators must be between 0 and 20")
	}
	if len(s.HintKinds) == 0 {
		return errors.New("hintKinds must not be empty")
	}
	for _, kind := range s.HintKinds {
		if !validHintKinds[kind] {
			return fmt.Errorf("unknown hint kind %q", kind)
		}
	}
	return nil
}

// RoomConfig はルーム作成リクエストの内容です。
// 未指定の項目はデフォルト設定が使われます。
type RoomConfig struct {
	MaxRounds       int      `json:"maxRounds"`
	Difficulty      string   `json:"difficulty"`
	Category        string   `json:"category"`
	CustomWords     []string `json:"customWords"`
	Private         bool     `json:"isPrivate"`
	Password        string   `json:"password"`
	DrawingTime     int      `json:"drawingTime"` // 秒
	MaxPlayers      int      `json:"maxPlayers"`
	AllowHints      *bool    `json:"allowHints"`
	AllowChat       *bool    `json:"allowChat"`
	AllowSpectators *bool    `json:"allowSpectators"`
	EndOnFirstGuess bool     `json:"endOnFirstGuess"`
}

// Apply overlays the request on top of base.
func (c RoomConfig) Apply(base Settings) Settings {
	s := base
	s.HintKinds = append([]string(nil), base.HintKinds...)
	if c.DrawingTime > 0 {
		s.DrawingTimeout = Duration(time.Duration(c.DrawingTime) * time.Second)
	}
	if c.MaxPlayers > 0 {
		s.MaxPlayers = c.MaxPlayers
	}
	if c.AllowHints != nil {
		s.AllowHints = *c.AllowHints
	}
	if c.AllowChat != nil {
		s.AllowChat = *c.AllowChat
	}
	if c.AllowSpectators != nil {
		s.AllowSpectators = *c.AllowSpectators
	}
	if c.EndOnFirstGuess {
		s.EndOnFirstGuess = true
	}
	return s
}
