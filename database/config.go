package database

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"doodleserver/models"
)

// LoadConfig は config.json を読み込み、環境変数で上書きします。
// ファイルが無い場合はデフォルト設定を使います。
func LoadConfig(filename string) (models.Config, error) {
	config := models.DefaultConfig()

	configFile, err := os.Open(filename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return config, err
	default:
		defer configFile.Close()
		if err := json.NewDecoder(configFile).Decode(&config); err != nil {
			return config, err
		}
	}

	if err := applyEnv(&config); err != nil {
		return config, err
	}
	return config, config.Validate()
}

func applyEnv(config *models.Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("DB_HOST", &config.DBHost)
	setString("DB_USER", &config.DBUser)
	setString("DB_PASSWORD", &config.DBPassword)
	setString("DB_NAME", &config.DBName)
	setString("DB_SSLMODE", &config.DBSSLMode)
	setString("REDIS_ADDR", &config.RedisAddr)
	setString("REDIS_PASSWORD", &config.RedisPassword)
	setString("NATS_URL", &config.NatsURL)
	setString("LISTEN_ADDR", &config.ListenAddr)
	setString("RECONNECT_SECRET", &config.ReconnectSecret)
	setString("ADMIN_TOKEN", &config.AdminToken)

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("REDIS_DB must be an integer")
		}
		config.RedisDB = db
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		config.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}
