package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Store is the part of *redis.Client the cache uses.
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type cacheOp struct {
	key    string
	value  []byte
	ttl    time.Duration
	delete bool
}

// RoomCache はルームのスナップショットをRedisにミラーします。
// 書き込みはキューに積むだけで、実際の書き込みは Run のゴルーチンが行います。
type RoomCache struct {
	store   Store
	ops     chan cacheOp
	logger  *zap.Logger
	timeout time.Duration
	retry   time.Duration

	mu sync.Mutex
	// 削除済みだがまだRedisから消えていないキー
	pending map[string]struct{}
}

func NewRoomCache(store Store, logger *zap.Logger, buffer int) *RoomCache {
	if buffer <= 0 {
		buffer = 1024
	}
	return &RoomCache{
		store:   store,
		ops:     make(chan cacheOp, buffer),
		logger:  logger,
		timeout: 2 * time.Second,
		retry:   30 * time.Second,
		pending: make(map[string]struct{}),
	}
}

// Set never blocks. When the queue is full the write is dropped; the next
// change to the room writes a fresh snapshot anyway.
func (c *RoomCache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
	c.push(cacheOp{key: key, value: value, ttl: ttl})
}

// Delete never blocks either. Get reports a miss for key from now on, and a
// delete dropped by a full queue is retried by Run.
func (c *RoomCache) Delete(key string) {
	c.mu.Lock()
	c.pending[key] = struct{}{}
	c.mu.Unlock()
	c.push(cacheOp{key: key, delete: true})
}

func (c *RoomCache) push(op cacheOp) {
	select {
	case c.ops <- op:
	default:
		c.logger.Warn("Room cache queue full, dropping write", zap.String("key", op.key), zap.Bool("delete", op.delete))
	}
}

// Run applies queued writes until ctx is done.
func (c *RoomCache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.retry)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-c.ops:
			c.apply(ctx, op)
		case <-ticker.C:
			c.retryDeletes(ctx)
		}
	}
}

func (c *RoomCache) retryDeletes(ctx context.Context) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.pending))
	for key := range c.pending {
		keys = append(keys, key)
	}
	c.mu.Unlock()
	for _, key := range keys {
		c.apply(ctx, cacheOp{key: key, delete: true})
	}
}

func (c *RoomCache) apply(ctx context.Context, op cacheOp) {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var err error
	if op.delete {
		err = c.store.Del(opCtx, op.key).Err()
	} else {
		err = c.store.Set(opCtx, op.key, op.value, op.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("Room cache write failed", zap.String("key", op.key), zap.Error(err))
		return
	}
	if op.delete {
		c.mu.Lock()
		delete(c.pending, op.key)
		c.mu.Unlock()
	}
}

// Get returns the cached snapshot for key. ok is false on a cache miss and
// for keys deleted through this cache.
func (c *RoomCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	_, gone := c.pending[key]
	c.mu.Unlock()
	if gone {
		return nil, false, nil
	}
	val, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}
