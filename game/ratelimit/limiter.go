// Package ratelimit throttles inbound actions per player and action type.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Rule struct {
	Rate  float64 // per second
	Burst int
}

type Limiter struct {
	mu       sync.Mutex
	def      Rule
	rules    map[string]Rule
	now      func() time.Time
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Option func(*Limiter)

// WithRule overrides the default rule for one action.
func WithRule(action string, rule Rule) Option {
	return func(l *Limiter) { l.rules[action] = rule }
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(def Rule, opts ...Option) *Limiter {
	l := &Limiter{
		def:      def,
		rules:    make(map[string]Rule),
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes one token for (key, action). When the bucket is empty it
// returns false and how long to wait, without consuming anything.
func (l *Limiter) Allow(key, action string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	id := action + "|" + key
	entry, ok := l.limiters[id]
	if !ok {
		rule, ok := l.rules[action]
		if !ok {
			rule = l.def
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.limiters[id] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Prune drops limiters unused for maxIdle.
func (l *Limiter) Prune(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
			n++
		}
	}
	return n
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Run prunes idle limiters every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(maxIdle)
		}
	}
}
