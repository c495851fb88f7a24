// Package hints builds the hints revealed while a word is being drawn.
package hints

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"doodleserver/models"
)

// Checkpoints are the fractions of remaining round time at which hints fire.
var Checkpoints = []float64{0.75, 0.50, 0.25}

type Hint struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// Offsets returns, for each checkpoint, the delay after round start at which
// the hint is due.
func Offsets(duration time.Duration) []time.Duration {
	offsets := make([]time.Duration, len(Checkpoints))
	for i, remaining := range Checkpoints {
		offsets[i] = time.Duration(float64(duration) * (1 - remaining))
	}
	return offsets
}

// Generator picks the hint kind for each index from Kinds, cycling.
type Generator struct {
	Kinds []string
}

func NewGenerator(kinds []string) Generator {
	if len(kinds) == 0 {
		kinds = []string{models.HintLength}
	}
	return Generator{Kinds: kinds}
}

func (g Generator) Generate(word string, index int, category string) Hint {
	kind := g.Kinds[index%len(g.Kinds)]
	return Generate(word, index, category, kind)
}

// Generate is deterministic for the same arguments.
func Generate(word string, index int, category, kind string) Hint {
	rnd := rand.New(rand.NewSource(seed(word, index)))
	letters := []rune(strings.TrimSpace(word))

	switch kind {
	case models.HintFirstLetter:
		if r, ok := firstLetter(letters); ok {
			return Hint{Index: index, Kind: kind, Text: fmt.Sprintf("Starts with %q", unicode.ToUpper(r))}
		}
	case models.HintLastLetter:
		if r, ok := lastLetter(letters); ok {
			return Hint{Index: index, Kind: kind, Text: fmt.Sprintf("Ends with %q", unicode.ToUpper(r))}
		}
	case models.HintVowel:
		if vowels := distinctVowels(letters); len(vowels) > 0 {
			v := vowels[rnd.Intn(len(vowels))]
			return Hint{Index: index, Kind: kind, Text: fmt.Sprintf("Contains the letter %q", unicode.ToUpper(v))}
		}
	case models.HintCategory:
		if category != "" {
			return Hint{Index: index, Kind: kind, Text: "Category: " + category}
		}
	case models.HintPattern:
		return Hint{Index: index, Kind: kind, Text: pattern(letters, index, rnd)}
	}
	return Hint{Index: index, Kind: models.HintLength, Text: lengthText(letters)}
}

func seed(word string, index int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s#%d", strings.ToLower(word), index)
	return int64(h.Sum64())
}

func lengthText(letters []rune) string {
	words := strings.Fields(string(letters))
	if len(words) <= 1 {
		return fmt.Sprintf("%d letters", len(letters))
	}
	sizes := make([]string, len(words))
	for i, w := range words {
		sizes[i] = fmt.Sprint(len([]rune(w)))
	}
	return fmt.Sprintf("%d words (%s letters)", len(words), strings.Join(sizes, ", "))
}

func firstLetter(letters []rune) (rune, bool) {
	for _, r := range letters {
		if unicode.IsLetter(r) {
			return r, true
		}
	}
	return 0, false
}

func lastLetter(letters []rune) (rune, bool) {
	for i := len(letters) - 1; i >= 0; i-- {
		if unicode.IsLetter(letters[i]) {
			return letters[i], true
		}
	}
	return 0, false
}

func distinctVowels(letters []rune) []rune {
	seen := map[rune]bool{}
	var vowels []rune
	for _, r := range letters {
		lower := unicode.ToLower(r)
		if strings.ContainsRune("aeiou", lower) && !seen[lower] {
			seen[lower] = true
			vowels = append(vowels, lower)
		}
	}
	return vowels
}

// pattern reveals index+1 letters, never more than half the word minus one.
func pattern(letters []rune, index int, rnd *rand.Rand) string {
	var positions []int
	for i, r := range letters {
		if !unicode.IsSpace(r) {
			positions = append(positions, i)
		}
	}
	reveal := index + 1
	if limit := (len(positions) - 1) / 2; reveal > limit {
		reveal = limit
	}
	shown := map[int]bool{}
	if reveal > 0 {
		for _, p := range rnd.Perm(len(positions))[:reveal] {
			shown[positions[p]] = true
		}
	}

	cells := make([]string, len(letters))
	for i, r := range letters {
		switch {
		case unicode.IsSpace(r):
			cells[i] = "/"
		case shown[i]:
			cells[i] = string(r)
		default:
			cells[i] = "_"
		}
	}
	return strings.Join(cells, " ")
}
