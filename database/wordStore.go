package database

import (
	"fmt"
	"math/rand"

	"doodleserver/game/words"
	"doodleserver/models"

	"gorm.io/gorm"
)

// LoadWordCatalog はPostgreSQLのお題をすべて読み込み、メモリ上のプロバイダを作ります。
func LoadWordCatalog(db *gorm.DB, rnd *rand.Rand) (*words.MemoryProvider, error) {
	var rows []models.Word
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	return words.NewMemoryProvider(ToEntries(rows), rnd), nil
}

func ToEntries(rows []models.Word) []words.Entry {
	entries := make([]words.Entry, 0, len(rows))
	for _, w := range rows {
		entries = append(entries, words.Entry{Text: w.Text, Category: w.Category, Difficulty: w.Difficulty})
	}
	return entries
}
