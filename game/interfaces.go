package game

import (
	"time"

	"doodleserver/game/moderation"
	"doodleserver/models"
)

// Sink receives events in the order the engine produces them. Publish is
// called while the engine holds its lock and must not block.
type Sink interface {
	Publish(ev models.Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev models.Event)

func (f SinkFunc) Publish(ev models.Event) { f(ev) }

// Cache mirrors room snapshots. Writes are fire-and-forget.
type Cache interface {
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

type Moderator interface {
	ModerateMessage(userID, username, text string) moderation.Verdict
}

// RateLimiter reports whether key may perform action now and, if not, how
// long to wait.
type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}

type nopSink struct{}

func (nopSink) Publish(models.Event) {}

type nopCache struct{}

func (nopCache) Set(string, []byte, time.Duration) {}
func (nopCache) Delete(string)                     {}

// CacheKey is the key a room snapshot is mirrored under.
func CacheKey(code string) string {
	return "room:" + code
}
