package migrations

import (
	"doodleserver/game/words"
	"doodleserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedDefaultWords(tx *gorm.DB, logger *zap.Logger) error {
	_, err := SeedWords(tx, words.DefaultEntries, logger)
	return err
}

// SeedWords はテーブルが空のときだけ entries を登録します。登録した件数を返します。
func SeedWords(db *gorm.DB, entries []words.Entry, logger *zap.Logger) (int, error) {
	var count int64
	if err := db.Model(&models.Word{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Word table already seeded", zap.Int64("words", count))
		return 0, nil
	}

	rows := WordRows(entries)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.CreateInBatches(rows, 100).Error; err != nil {
		return 0, err
	}
	logger.Info("Seeded word catalog", zap.Int("words", len(rows)))
	return len(rows), nil
}

// WordRows converts catalog entries to rows, dropping blanks and duplicates
// of the same text and category.
func WordRows(entries []words.Entry) []models.Word {
	seen := make(map[string]bool, len(entries))
	rows := make([]models.Word, 0, len(entries))
	for _, e := range entries {
		text := words.Normalize(e.Text)
		if text == "" {
			continue
		}
		key := text + "|" + e.Category
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, models.Word{Text: e.Text, Category: e.Category, Difficulty: e.Difficulty})
	}
	return rows
}
