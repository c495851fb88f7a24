package models

import (
	"errors"
	"time"
)

// Config はサーバー全体の設定情報を保持します。
// config.json から読み込まれ、環境変数で上書きされます。
type Config struct {
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	NatsURL       string `json:"nats_url"`

	ListenAddr      string   `json:"listen_addr"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ReconnectSecret string   `json:"reconnect_secret"`
	AdminToken      string   `json:"admin_token"` // 空なら管理APIは認証なし

	// ルームの掃除
	InactivityTimeout Duration `json:"inactivity_timeout"`
	EmptyRoomGrace    Duration `json:"empty_room_grace"`
	SweepSchedule     string   `json:"sweep_schedule"`
	CacheTTL          Duration `json:"cache_ttl"`

	// レート制限（1秒あたりのアクション数とバースト）
	ActionRate  float64 `json:"action_rate"`
	ActionBurst int     `json:"action_burst"`
	HTTPRate    float64 `json:"http_rate"`
	HTTPBurst   int     `json:"http_burst"`

	// チャットのモデレーション
	BlockedWords  []string `json:"blocked_words"`
	MaxChatLength int      `json:"max_chat_length"`

	Settings Settings `json:"settings"`
}

// DefaultConfig returns the configuration used when config.json is absent.
func DefaultConfig() Config {
	return Config{
		DBSSLMode:         "disable",
		RedisAddr:         "localhost:6379",
		ListenAddr:        ":8080",
		AllowedOrigins:    []string{"http://localhost:3000"},
		InactivityTimeout: Duration(30 * time.Minute),
		EmptyRoomGrace:    Duration(2 * time.Minute),
		SweepSchedule:     "@every 1m",
		CacheTTL:          Duration(10 * time.Minute),
		ActionRate:        10,
		ActionBurst:       20,
		HTTPRate:          5,
		HTTPBurst:         10,
		MaxChatLength:     200,
		Settings:          DefaultSettings(),
	}
}

// HasDatabase reports whether PostgreSQL connection settings were provided.
func (c Config) HasDatabase() bool {
	return c.DBHost != "" && c.DBName != ""
}

func (c Config) Validate() error {
	var errs []error
	if c.InactivityTimeout <= 0 {
		errs = append(errs, errors.New("inactivity_timeout must be positive"))
	}
	if c.EmptyRoomGrace <= 0 {
		errs = append(errs, errors.New("empty_room_grace must be positive"))
	}
	if c.EmptyRoomGrace > c.InactivityTimeout {
		errs = append(errs, errors.New("empty_room_grace must not exceed inactivity_timeout"))
	}
	if c.SweepSchedule == "" {
		errs = append(errs, errors.New("sweep_schedule is required"))
	}
	if c.ActionRate <= 0 || c.ActionBurst <= 0 {
		errs = append(errs, errors.New("action_rate and action_burst must be positive"))
	}
	if c.HTTPRate <= 0 || c.HTTPBurst <= 0 {
		errs = append(errs, errors.New("http_rate and http_burst must be positive"))
	}
	if c.MaxChatLength <= 0 {
		errs = append(errs, errors.New("max_chat_length must be positive"))
	}
	if err := c.Settings.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
