package broadcast

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"doodleserver/models"
)

// Publisher is the part of *nats.Conn the publisher needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// envelope は NATS に流すイベントの形です。宛先情報も含めます。
type envelope struct {
	Type   string                 `json:"type"`
	RoomID string                 `json:"roomId"`
	To     string                 `json:"to,omitempty"`
	Except string                 `json:"except,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
	SentAt time.Time              `json:"sentAt"`
}

// NatsPublisher mirrors room events onto NATS subjects so other processes
// (spectator relays, analytics) can follow games.
type NatsPublisher struct {
	conn   Publisher
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

func NewNatsPublisher(conn Publisher, prefix string, logger *zap.Logger) *NatsPublisher {
	if prefix == "" {
		prefix = "doodle"
	}
	return &NatsPublisher{conn: conn, prefix: prefix, logger: logger, now: time.Now}
}

// Subject returns "<prefix>.rooms.<code>.<type>".
func Subject(prefix, roomID, eventType string) string {
	return strings.Join([]string{prefix, "rooms", roomID, eventType}, ".")
}

func (p *NatsPublisher) Publish(ev models.Event) {
	payload, err := json.Marshal(envelope{
		Type:   ev.Type,
		RoomID: ev.RoomID,
		To:     ev.To,
		Except: ev.Except,
		Data:   ev.Data,
		SentAt: p.now().UTC(),
	})
	if err != nil {
		p.logger.Error("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if err := p.conn.Publish(Subject(p.prefix, ev.RoomID, ev.Type), payload); err != nil {
		p.logger.Warn("Failed to publish event to NATS",
			zap.String("room", ev.RoomID), zap.String("type", ev.Type), zap.Error(err))
	}
}

// ConnectNats dials url and keeps retrying in the background when the
// server is not up yet.
func ConnectNats(url string, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("doodleserver"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.ReconnectBufSize(5 * 1024 * 1024),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("NATS connection established", zap.String("url", url))
	return nc, nil
}
