package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doodleserver/game"
	"doodleserver/models"
)

type collector struct {
	mu     sync.Mutex
	events []models.Event
}

func (c *collector) Publish(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestQueueDrainKeepsOrder(t *testing.T) {
	q := NewQueue()
	q.Publish(models.Event{Type: "a"})
	q.Publish(models.Event{Type: "b"})
	q.Publish(models.Event{Type: "c"})
	assert.Equal(t, 3, q.Len())

	got := q.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Type)
	assert.Equal(t, "c", got[2].Type)
	assert.Empty(t, q.Drain())
}

func TestQueueRunForwardsAndFlushes(t *testing.T) {
	q := NewQueue()
	sink := &collector{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx, sink)
		close(done)
	}()

	for _, typ := range []string{"one", "two", "three"} {
		q.Publish(models.Event{Type: typ})
	}
	assert.Eventually(t, func() bool { return len(sink.types()) == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	q.Publish(models.Event{Type: "late"})
	assert.Equal(t, []string{"one", "two", "three"}, sink.types())
}

func TestFanoutDeliversToAll(t *testing.T) {
	a, b := &collector{}, &collector{}
	f := Fanout{a, nil, b, game.SinkFunc(func(models.Event) {})}
	f.Publish(models.Event{Type: "x"})
	assert.Equal(t, []string{"x"}, a.types())
	assert.Equal(t, []string{"x"}, b.types())
}

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return f.err
}

func TestNatsPublisherSubjectAndPayload(t *testing.T) {
	conn := &fakeConn{}
	p := NewNatsPublisher(conn, "", zap.NewNop())
	p.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	p.Publish(models.Event{Type: "hint", RoomID: "ABC123", Except: "p1", Data: map[string]interface{}{"hint": "_ _ _"}})

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "doodle.rooms.ABC123.hint", conn.subjects[0])

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.payloads[0], &env))
	assert.Equal(t, "hint", env["type"])
	assert.Equal(t, "p1", env["except"])
	assert.NotContains(t, env, "to")
	assert.Equal(t, "2024-03-01T12:00:00Z", env["sentAt"])
}

func TestNatsPublisherSwallowsErrors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := NewNatsPublisher(conn, "games", zap.NewNop())
	assert.NotPanics(t, func() { p.Publish(models.Event{Type: "countdown", RoomID: "R1"}) })
	assert.Equal(t, []string{"games.rooms.R1.countdown"}, conn.subjects)
}
