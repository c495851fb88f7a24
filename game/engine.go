// Package game is the room and round orchestration engine.
//
// All room state lives in one Engine. Every public method and every timer
// callback runs under the engine lock, so each handler sees and leaves the
// rooms in a consistent state and events are published in the order they are
// produced.
package game

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"doodleserver/game/moderation"
	"doodleserver/game/timers"
	"doodleserver/game/words"
	"doodleserver/models"

	"go.uber.org/zap"
)

const (
	keyCountdown = "countdown"
	keyRound     = "round"
	keyTimer     = "timer"
	keyNextRound = "next-round"
	keyIdle      = "idle"
	keyEmpty     = "empty"

	// presence timers outlive rounds and are kept in their own scope
	presenceScope = "#presence"
)

func hintKey(i int) string { return "hint-" + strconv.Itoa(i) }

func reconnectKey(playerID string) string { return "reconnect:" + playerID }

type Engine struct {
	mu sync.Mutex

	logger    *zap.Logger
	clock     timers.Clock
	timers    *timers.Scheduler
	provider  words.Provider
	selector  *words.Selector
	cache     Cache
	moderator Moderator
	limiter   RateLimiter
	sink      Sink
	rand      *rand.Rand

	defaults          models.Settings
	cacheTTL          time.Duration
	inactivityTimeout time.Duration
	emptyRoomGrace    time.Duration

	rooms        map[string]*models.Room
	startedAt    time.Time
	roomsCreated int
	roomsDeleted int
	closed       bool
}

type Option func(*Engine)

func WithClock(clock timers.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithSink(sink Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = cache
		e.cacheTTL = ttl
	}
}

func WithWordProvider(provider words.Provider) Option {
	return func(e *Engine) { e.provider = provider }
}

func WithModerator(m Moderator) Option {
	return func(e *Engine) { e.moderator = m }
}

func WithRateLimiter(l RateLimiter) Option {
	return func(e *Engine) { e.limiter = l }
}

func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) { e.rand = rnd }
}

// WithSettings sets the defaults applied to every new room.
func WithSettings(s models.Settings) Option {
	return func(e *Engine) { e.defaults = s }
}

// WithExpiry sets how long a room may stay idle, and how long it may stay
// empty, before it is deleted.
func WithExpiry(inactivity, emptyGrace time.Duration) Option {
	return func(e *Engine) {
		e.inactivityTimeout = inactivity
		e.emptyRoomGrace = emptyGrace
	}
}

func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger:            logger,
		clock:             timers.RealClock(),
		cache:             nopCache{},
		moderator:         moderation.AllowAll{},
		sink:              nopSink{},
		defaults:          models.DefaultSettings(),
		cacheTTL:          10 * time.Minute,
		inactivityTimeout: 30 * time.Minute,
		emptyRoomGrace:    2 * time.Minute,
		rooms:             make(map[string]*models.Room),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.rand == nil {
		e.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.timers = timers.New(e.clock, e.dispatch)
	e.selector = words.NewSelector(e.provider, rand.New(rand.NewSource(e.rand.Int63())))
	e.startedAt = e.clock.Now()
	return e
}

// dispatch runs timer callbacks under the engine lock.
func (e *Engine) dispatch(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	f()
}

// Close cancels every pending timer. The engine rejects timer callbacks
// afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.rooms {
		e.cancelRoomTimers(id)
	}
	e.closed = true
	e.logger.Info("engine closed", zap.Int("rooms", len(e.rooms)))
}

func (e *Engine) now() time.Time { return e.clock.Now() }

func (e *Engine) lookup(code string) (*models.Room, error) {
	room, ok := e.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (e *Engine) throttle(playerID, action string) error {
	if e.limiter == nil {
		return nil
	}
	if ok, wait := e.limiter.Allow(playerID, action); !ok {
		e.logger.Debug("action rate limited",
			zap.String("player", playerID),
			zap.String("action", action),
			zap.Duration("retryAfter", wait))
		return &RateLimitedError{Action: action, RetryAfter: wait}
	}
	return nil
}

func (e *Engine) cancelRoomTimers(id string) {
	e.timers.CancelAll(id)
	e.timers.CancelAll(id + presenceScope)
}

// touch records activity on room.
func (e *Engine) touch(room *models.Room) {
	room.LastActivity = e.now()
}

func (e *Engine) armIdle(room *models.Room, after time.Duration) {
	id := room.ID
	e.timers.Schedule(id+presenceScope, keyIdle, after, func() { e.expireIdle(id) })
}

func (e *Engine) expireIdle(id string) {
	room, ok := e.rooms[id]
	if !ok {
		return
	}
	idle := e.now().Sub(room.LastActivity)
	if idle < e.inactivityTimeout {
		e.armIdle(room, e.inactivityTimeout-idle)
		return
	}
	e.deleteRoom(room, "inactive")
}

// mirror writes the room snapshot to the cache.
func (e *Engine) mirror(room *models.Room) {
	data, err := json.Marshal(e.snapshot(room))
	if err != nil {
		e.logger.Error("failed to encode room snapshot", zap.String("room", room.ID), zap.Error(err))
		return
	}
	e.cache.Set(CacheKey(room.ID), data, e.cacheTTL)
}

func (e *Engine) snapshot(room *models.Room) models.RoomSnapshot {
	s := models.RoomSnapshot{
		ID:         room.ID,
		Status:     room.Status,
		Phase:      room.Phase.Kind(),
		Round:      room.Round,
		MaxRounds:  room.MaxRounds,
		HostID:     room.HostID,
		Players:    playerList(room),
		Private:    room.Private,
		Difficulty: room.Difficulty,
		Category:   room.Category,
		Settings:   room.Settings,
		CreatedAt:  room.CreatedAt,
		UpdatedAt:  room.LastActivity,
	}
	if d, ok := room.Drawing(); ok {
		s.Drawer = d.Drawer
		s.TimeLeft = secondsLeft(d.Remaining(e.now()))
	}
	return s
}

func secondsLeft(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
