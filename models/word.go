package models

import (
	"gorm.io/gorm"
)

// Word はPostgreSQLに保存するお題の単語です。
type Word struct {
	gorm.Model
	Text       string `gorm:"not null;uniqueIndex:idx_word_text_category"`
	Category   string `gorm:"not null;default:'';uniqueIndex:idx_word_text_category"`
	Difficulty string `gorm:"not null;index"`
}
