// Package timers keeps the named per-room timers of the game engine.
//
// Each (room, key) pair holds at most one pending timer. Callbacks are handed
// to a Dispatcher so they run serialized with the rest of the room's handlers,
// and every callback is re-validated against the current entry before it runs,
// so a timer canceled or replaced after it fired never executes.
package timers

import (
	"sort"
	"sync"
	"time"
)

// Dispatcher runs f serialized with other room handlers.
type Dispatcher func(f func())

// Handle identifies one scheduled timer.
type Handle struct {
	Room string
	Key  string
	id   uint64
}

type entry struct {
	id       uint64
	timer    Timer
	interval time.Duration
	fn       func()
}

type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	dispatch Dispatcher
	seq      uint64
	rooms    map[string]map[string]*entry
}

// New creates a Scheduler. A nil dispatch runs callbacks directly on the
// clock's goroutine.
func New(clock Clock, dispatch Dispatcher) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Scheduler{
		clock:    clock,
		dispatch: dispatch,
		rooms:    make(map[string]map[string]*entry),
	}
}

func (s *Scheduler) Clock() Clock { return s.clock }

// Schedule runs fn once after delay. An existing timer under the same key is
// canceled first.
func (s *Scheduler) Schedule(room, key string, delay time.Duration, fn func()) Handle {
	return s.add(room, key, delay, 0, fn)
}

// Every runs fn each interval until the key is canceled or replaced.
func (s *Scheduler) Every(room, key string, interval time.Duration, fn func()) Handle {
	return s.add(room, key, interval, interval, fn)
}

func (s *Scheduler) add(room, key string, delay, interval time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.rooms[room]
	if keys == nil {
		keys = make(map[string]*entry)
		s.rooms[room] = keys
	}
	if old := keys[key]; old != nil {
		old.timer.Stop()
	}
	s.seq++
	e := &entry{id: s.seq, interval: interval, fn: fn}
	e.timer = s.clock.AfterFunc(delay, s.fireFunc(room, key, e.id))
	keys[key] = e
	return Handle{Room: room, Key: key, id: e.id}
}

func (s *Scheduler) fireFunc(room, key string, id uint64) func() {
	return func() {
		s.dispatch(func() { s.fire(room, key, id) })
	}
}

func (s *Scheduler) fire(room, key string, id uint64) {
	s.mu.Lock()
	e := s.rooms[room][key]
	if e == nil || e.id != id {
		// canceled or replaced after the clock fired
		s.mu.Unlock()
		return
	}
	if e.interval > 0 {
		e.timer = s.clock.AfterFunc(e.interval, s.fireFunc(room, key, id))
	} else {
		s.remove(room, key)
	}
	fn := e.fn
	s.mu.Unlock()

	fn()
}

// Cancel stops the timer under key. It reports whether one was pending.
func (s *Scheduler) Cancel(room, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.rooms[room][key]
	if e == nil {
		return false
	}
	e.timer.Stop()
	s.remove(room, key)
	return true
}

// CancelHandle cancels h only if it is still the current timer for its key.
func (s *Scheduler) CancelHandle(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.rooms[h.Room][h.Key]
	if e == nil || e.id != h.id {
		return false
	}
	e.timer.Stop()
	s.remove(h.Room, h.Key)
	return true
}

// CancelAll stops every timer of room and returns how many were pending.
// Calling it again is a no-op.
func (s *Scheduler) CancelAll(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.rooms[room]
	for _, e := range keys {
		e.timer.Stop()
	}
	delete(s.rooms, room)
	return len(keys)
}

// CancelMatching stops the timers of room whose key satisfies match.
func (s *Scheduler) CancelMatching(room string, match func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, e := range s.rooms[room] {
		if match(key) {
			e.timer.Stop()
			s.remove(room, key)
			n++
		}
	}
	return n
}

func (s *Scheduler) Active(room, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[room][key] != nil
}

// Keys returns the pending keys of room, sorted.
func (s *Scheduler) Keys(room string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.rooms[room]))
	for key := range s.rooms[room] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *Scheduler) Count(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms[room])
}

// Total returns the number of pending timers across all rooms.
func (s *Scheduler) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, keys := range s.rooms {
		n += len(keys)
	}
	return n
}

// remove must be called with s.mu held.
func (s *Scheduler) remove(room, key string) {
	keys := s.rooms[room]
	delete(keys, key)
	if len(keys) == 0 {
		delete(s.rooms, room)
	}
}
