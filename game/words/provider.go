package words

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
)

// Provider is the word content source. Both lookups may come back empty.
type Provider interface {
	RandomWord(difficulty string) (string, bool)
	RandomWordFromCategory(category, difficulty string) (string, bool)
}

type Entry struct {
	Text       string
	Category   string
	Difficulty string
}

// MemoryProvider serves words from an in-memory catalog.
type MemoryProvider struct {
	mu         sync.Mutex
	rand       *rand.Rand
	general    map[string][]string
	byCategory map[string]map[string][]string
	size       int
}

func NewMemoryProvider(entries []Entry, rnd *rand.Rand) *MemoryProvider {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	p := &MemoryProvider{
		rand:       rnd,
		general:    make(map[string][]string),
		byCategory: make(map[string]map[string][]string),
	}
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		difficulty := strings.ToLower(e.Difficulty)
		p.general[difficulty] = append(p.general[difficulty], text)
		if e.Category != "" {
			category := strings.ToLower(e.Category)
			if p.byCategory[category] == nil {
				p.byCategory[category] = make(map[string][]string)
			}
			p.byCategory[category][difficulty] = append(p.byCategory[category][difficulty], text)
		}
		p.size++
	}
	return p
}

func (p *MemoryProvider) RandomWord(difficulty string) (string, bool) {
	return p.pick(p.general[strings.ToLower(difficulty)])
}

func (p *MemoryProvider) RandomWordFromCategory(category, difficulty string) (string, bool) {
	return p.pick(p.byCategory[strings.ToLower(category)][strings.ToLower(difficulty)])
}

func (p *MemoryProvider) pick(pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.rand.Intn(len(pool))], true
}

func (p *MemoryProvider) Categories() []string {
	categories := make([]string, 0, len(p.byCategory))
	for c := range p.byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

func (p *MemoryProvider) Len() int { return p.size }
