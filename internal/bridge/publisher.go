// Package bridge mirrors room events onto NATS so sibling processes (bots,
// dashboards) can observe a session without holding their own room socket.
package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partyround/internal/realtime"
)

// Config holds NATS connection settings for the event mirror.
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns the default bridge configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "room.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// envelope is the published message format.
type envelope struct {
	RoomID    int64              `json:"room_id"`
	Type      realtime.EventType `json:"type"`
	Payload   json.RawMessage    `json:"payload,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Publisher re-emits room events on <prefix>.<roomID>.<type>.
type Publisher struct {
	nc     *nats.Conn
	config Config
}

// NewPublisher connects to NATS with the usual reconnect handlers.
func NewPublisher(config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Publisher{nc: nc, config: config}, nil
}

// PublishEvent mirrors one room event. Failures never affect session state;
// the caller only logs them.
func (p *Publisher) PublishEvent(roomID int64, event realtime.Event) error {
	data, err := json.Marshal(envelope{
		RoomID:    roomID,
		Type:      event.Type,
		Payload:   event.Payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	subject := fmt.Sprintf("%s.%d.%s", p.config.SubjectPrefix, roomID, event.Type)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Str("type", string(event.Type)).
		Msg("room event mirrored")
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("failed to drain NATS connection")
		}
	}
}
