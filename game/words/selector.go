// Package words selects the secret word of each round.
package words

import (
	"math/rand"
	"strings"

	"doodleserver/models"
)

type Source string

const (
	SourceCustom   Source = "custom"
	SourceCategory Source = "category"
	SourceGeneral  Source = "general"
	SourceFallback Source = "fallback"
)

// Request describes the room's word configuration. Used holds the words of
// the current game's history.
type Request struct {
	Difficulty  string
	Category    string
	CustomWords []string
	Used        []string
}

// Selector prefers unused custom words, then the room's category, then the
// general pool for the difficulty.
type Selector struct {
	provider Provider
	fallback *MemoryProvider
	rand     *rand.Rand
	attempts int
}

func NewSelector(provider Provider, rnd *rand.Rand) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	fallback := NewMemoryProvider(DefaultEntries, rand.New(rand.NewSource(rnd.Int63())))
	if provider == nil {
		provider = fallback
	}
	return &Selector{provider: provider, fallback: fallback, rand: rnd, attempts: 8}
}

func (s *Selector) Pick(req Request) (string, Source) {
	used := make(map[string]bool, len(req.Used))
	for _, w := range req.Used {
		used[Normalize(w)] = true
	}

	if custom := unusedCustomWords(req.CustomWords, used); len(custom) > 0 {
		return custom[s.rand.Intn(len(custom))], SourceCustom
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	var repeat string
	var repeatSource Source
	try := func(source Source, lookup func() (string, bool)) (string, bool) {
		for i := 0; i < s.attempts; i++ {
			w, ok := lookup()
			if !ok {
				return "", false
			}
			if !used[Normalize(w)] {
				return w, true
			}
			if repeat == "" {
				repeat, repeatSource = w, source
			}
		}
		return "", false
	}

	if req.Category != "" {
		if w, ok := try(SourceCategory, func() (string, bool) {
			return s.provider.RandomWordFromCategory(req.Category, difficulty)
		}); ok {
			return w, SourceCategory
		}
	}
	if w, ok := try(SourceGeneral, func() (string, bool) {
		return s.provider.RandomWord(difficulty)
	}); ok {
		return w, SourceGeneral
	}
	if repeat != "" {
		return repeat, repeatSource
	}
	if w, ok := try(SourceFallback, func() (string, bool) {
		return s.fallback.RandomWord(difficulty)
	}); ok {
		return w, SourceFallback
	}
	if repeat != "" {
		return repeat, repeatSource
	}
	w, _ := s.fallback.RandomWord(models.DifficultyEasy)
	return w, SourceFallback
}

func unusedCustomWords(custom []string, used map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range custom {
		w = strings.TrimSpace(w)
		key := Normalize(w)
		if key == "" || used[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
