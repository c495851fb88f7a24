package migrations

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration は一度だけ適用されるスキーマ変更です。ID はファイル名と同じにします。
type Migration struct {
	ID string
	Up func(tx *gorm.DB, logger *zap.Logger) error
}

// SchemaMigration records an applied migration.
type SchemaMigration struct {
	ID        string `gorm:"primaryKey"`
	AppliedAt time.Time
}

var registry = []Migration{
	{ID: "202410190900_create_words_table", Up: createWordsTable},
	{ID: "202410190910_seed_default_words", Up: seedDefaultWords},
}

// Migrate は未適用のマイグレーションを順番に実行します。
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range registry {
		var count int64
		if err := db.Model(&SchemaMigration{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx, logger); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{ID: m.ID, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", m.ID, err)
		}
		logger.Info("マイグレーションを適用しました", zap.String("id", m.ID))
	}
	return nil
}
