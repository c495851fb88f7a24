package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"doodleserver/game/words"
)

func TestRegistryOrderedAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i, m := range registry {
		assert.False(t, seen[m.ID], "duplicate migration %s", m.ID)
		seen[m.ID] = true
		assert.NotNil(t, m.Up)
		if i > 0 {
			assert.Less(t, strings.Compare(registry[i-1].ID, m.ID), 0, "migrations must be in ID order")
		}
	}
}

func TestWordRowsDropsBlanksAndDuplicates(t *testing.T) {
	rows := WordRows([]words.Entry{
		{Text: "Apple", Category: "food", Difficulty: "easy"},
		{Text: "apple", Category: "food", Difficulty: "easy"},
		{Text: "apple", Category: "", Difficulty: "easy"},
		{Text: "   ", Difficulty: "easy"},
	})
	assert.Len(t, rows, 2)
	assert.Equal(t, "Apple", rows[0].Text)
	assert.Equal(t, "", rows[1].Category)
}

func TestDefaultCatalogSeedsCleanly(t *testing.T) {
	entries := words.DefaultEntries
	assert.Len(t, WordRows(entries), len(entries))
}
