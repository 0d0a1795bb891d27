package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoRoom is returned when connecting without a room id.
	ErrNoRoom = errors.New("no room id to connect to")
	// ErrAlreadyConnected is returned when a connection is already open.
	ErrAlreadyConnected = errors.New("transport already connected")
)

// Config holds configuration for the room push connection.
type Config struct {
	// URL is the websocket base URL, e.g. "ws://localhost:8000".
	URL string
	// PingInterval is how often a liveness probe is sent while the
	// connection is open. Probes keep intermediary proxies from closing
	// the connection and cause no state change.
	PingInterval     time.Duration
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	MaxMessageSize   int64

	// Clock drives the ping ticker. Nil means the real clock; tests
	// inject a fake one.
	Clock clockwork.Clock
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		PingInterval:     25 * time.Second,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   4096,
	}
}

// Handler receives every delivered event, in arrival order.
type Handler func(Event)

// wsSession is the state of one dialed connection. Teardown is idempotent
// so a read error, a Close call, and a write failure can all race safely.
type wsSession struct {
	id   string
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func (s *wsSession) stop() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Transport owns at most one push connection bound to a room. After a
// close, Connect may be called again without leaking the prior
// connection's resources.
type Transport struct {
	config Config
	clock  clockwork.Clock
	dialer *websocket.Dialer

	mu   sync.Mutex
	sess *wsSession
}

// New creates a transport for the configured websocket endpoint.
func New(config Config) *Transport {
	clock := config.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Transport{
		config: config,
		clock:  clock,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Connect opens the push connection for roomID and delivers events to
// onEvent. It fails fast when roomID is absent and refuses to open a
// second connection while one is up.
func (t *Transport) Connect(ctx context.Context, roomID int64, onEvent Handler) error {
	if roomID == 0 {
		return ErrNoRoom
	}
	if onEvent == nil {
		return errors.New("nil event handler")
	}

	t.mu.Lock()
	if t.sess != nil {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}
	t.mu.Unlock()

	url := fmt.Sprintf("%s/ws/rooms/%d", strings.TrimRight(t.config.URL, "/"), roomID)
	conn, _, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial room socket: %w", err)
	}
	conn.SetReadLimit(t.config.MaxMessageSize)

	sess := &wsSession{
		id:   uuid.New().String(),
		conn: conn,
		done: make(chan struct{}),
	}

	t.mu.Lock()
	if t.sess != nil {
		t.mu.Unlock()
		conn.Close()
		return ErrAlreadyConnected
	}
	t.sess = sess
	t.mu.Unlock()

	log.Info().
		Str("connection_id", sess.id).
		Int64("room_id", roomID).
		Msg("room socket connected")

	onEvent(Event{Type: EventTypeOpened})

	go t.writePump(sess)
	go t.readPump(sess, onEvent)

	return nil
}

// Close tears down the current connection, if any. The closed event is
// delivered through the registered handler once the read loop exits.
func (t *Transport) Close() {
	t.mu.Lock()
	sess := t.sess
	t.mu.Unlock()
	if sess != nil {
		sess.stop()
	}
}

func (t *Transport) clearSession(sess *wsSession) {
	t.mu.Lock()
	if t.sess == sess {
		t.sess = nil
	}
	t.mu.Unlock()
}

// readPump reads events until the connection dies. It is the only reader,
// so delivery order matches arrival order.
func (t *Transport) readPump(sess *wsSession, onEvent Handler) {
	var closeErr error

	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", sess.id).
					Msg("unexpected room socket close")
			}
			closeErr = err
			break
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
			// Malformed payloads must never reach the handler.
			log.Warn().
				Str("connection_id", sess.id).
				Str("data", string(data)).
				Msg("dropping malformed room event")
			continue
		}

		onEvent(event)
	}

	sess.stop()
	t.clearSession(sess)

	log.Info().
		Str("connection_id", sess.id).
		Msg("room socket closed")

	onEvent(Event{Type: EventTypeClosed, Err: closeErr})
}

// writePump sends the periodic liveness probe.
func (t *Transport) writePump(sess *wsSession) {
	ticker := t.clock.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.done:
			return
		case <-ticker.Chan():
			sess.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", sess.id).
					Msg("failed to send ping")
				sess.stop()
				return
			}
		}
	}
}
