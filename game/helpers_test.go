package game

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"doodleserver/game/timers"
	"doodleserver/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Publish(ev models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

func (r *recorder) types() []string {
	var types []string
	for _, ev := range r.all() {
		types = append(types, ev.Type)
	}
	return types
}

func (r *recorder) ofType(typ string) []models.Event {
	var out []models.Event
	for _, ev := range r.all() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *memCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deleted = append(c.deleted, key)
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type harness struct {
	*Engine
	clock *timers.FakeClock
	rec   *recorder
	cache *memCache
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		clock: timers.NewFakeClock(epoch),
		rec:   &recorder{},
		cache: newMemCache(),
	}
	base := []Option{
		WithClock(h.clock),
		WithSink(h.rec),
		WithCache(h.cache, time.Minute),
		WithRand(rand.New(rand.NewSource(1))),
		WithExpiry(10*time.Minute, time.Minute),
	}
	h.Engine = NewEngine(zaptest.NewLogger(t), append(base, opts...)...)
	t.Cleanup(h.Close)
	return h
}

// room returns the live room. Tests run single-goroutine with a fake clock,
// so reading it outside the lock is safe.
func (h *harness) room(t *testing.T, code string) *models.Room {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[code]
	require.True(t, ok, "room %s not found", code)
	return room
}

func (h *harness) exists(code string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.rooms[code]
	return ok
}

// newRoom creates a room hosted by "p1" and joins the given extra players
// ("p2", "p3", ...).
func (h *harness) newRoom(t *testing.T, cfg models.RoomConfig, extra int) string {
	t.Helper()
	snap, err := h.CreateRoom("p1", "Player1", cfg)
	require.NoError(t, err)
	for i := 2; i <= extra+1; i++ {
		id := "p" + string(rune('0'+i))
		_, err := h.Join(snap.ID, JoinRequest{PlayerID: id, Name: "Player" + string(rune('0'+i))})
		require.NoError(t, err)
	}
	return snap.ID
}

// startDrawing starts the game and runs the countdown.
func (h *harness) startDrawing(t *testing.T, code string) *models.Drawing {
	t.Helper()
	require.NoError(t, h.StartGame(code, "p1"))
	h.clock.Advance(3 * time.Second)
	d, ok := h.room(t, code).Drawing()
	require.True(t, ok, "expected drawing phase")
	return d
}

func (h *harness) score(t *testing.T, code, playerID string) int {
	t.Helper()
	p, _ := h.room(t, code).FindPlayer(playerID)
	require.NotNil(t, p)
	return p.Score
}

type denyLimiter struct {
	deny map[string]bool
}

func (l denyLimiter) Allow(key, action string) (bool, time.Duration) {
	if l.deny[action] {
		return false, 750 * time.Millisecond
	}
	return true, 0
}
