package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func TestAllowWithinBurst(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	l := New(Rule{Rate: 1, Burst: 3}, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		ok, wait := l.Allow("p1", "guess")
		assert.True(t, ok)
		assert.Zero(t, wait)
	}
	ok, wait := l.Allow("p1", "guess")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	clock.now = clock.now.Add(time.Second)
	ok, _ = l.Allow("p1", "guess")
	assert.True(t, ok)
}

func TestRejectedCallDoesNotConsume(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	l := New(Rule{Rate: 2, Burst: 1}, WithClock(clock.Now))

	ok, _ := l.Allow("p1", "chat-message")
	assert.True(t, ok)
	for i := 0; i < 5; i++ {
		ok, wait := l.Allow("p1", "chat-message")
		assert.False(t, ok)
		assert.Equal(t, 500*time.Millisecond, wait)
	}
	clock.now = clock.now.Add(500 * time.Millisecond)
	ok, _ = l.Allow("p1", "chat-message")
	assert.True(t, ok)
}

func TestKeysAndActionsAreIndependent(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	l := New(Rule{Rate: 1, Burst: 1}, WithClock(clock.Now), WithRule("draw-line", Rule{Rate: 100, Burst: 100}))

	ok, _ := l.Allow("p1", "guess")
	assert.True(t, ok)
	ok, _ = l.Allow("p2", "guess")
	assert.True(t, ok)
	ok, _ = l.Allow("p1", "chat-message")
	assert.True(t, ok)
	for i := 0; i < 50; i++ {
		ok, _ = l.Allow("p1", "draw-line")
		assert.True(t, ok)
	}
}

func TestPrune(t *testing.T) {
	clock := &manualClock{now: time.Unix(1000, 0)}
	l := New(Rule{Rate: 1, Burst: 1}, WithClock(clock.Now))
	l.Allow("p1", "guess")
	clock.now = clock.now.Add(5 * time.Minute)
	l.Allow("p2", "guess")

	assert.Equal(t, 1, l.Prune(time.Minute))
	assert.Equal(t, 1, l.Len())
}
