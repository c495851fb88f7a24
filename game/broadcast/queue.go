package broadcast

import (
	"context"
	"sync"

	"doodleserver/game"
	"doodleserver/models"
)

// Queue はエンジンのロック内で受け取ったイベントを溜め、
// ロックの外で下流の Sink へ順番どおりに流します。
type Queue struct {
	mu     sync.Mutex
	events []models.Event
	ready  chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Publish never blocks.
func (q *Queue) Publish(ev models.Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain returns every queued event in publish order and empties the queue.
func (q *Queue) Drain() []models.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Run forwards queued events to sink until ctx is done. Events still queued
// when ctx ends are flushed before returning.
func (q *Queue) Run(ctx context.Context, sink game.Sink) {
	for {
		select {
		case <-ctx.Done():
			for _, ev := range q.Drain() {
				sink.Publish(ev)
			}
			return
		case <-q.ready:
			for _, ev := range q.Drain() {
				sink.Publish(ev)
			}
		}
	}
}
