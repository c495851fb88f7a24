package migrations

import (
	"doodleserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createWordsTable(tx *gorm.DB, logger *zap.Logger) error {
	if err := tx.AutoMigrate(&models.Word{}); err != nil {
		return err
	}
	logger.Info("Words table created successfully")
	return nil
}
