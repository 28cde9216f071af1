package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/authsync/pkg/authstate"
)

const (
	hubWriteTimeout = 10 * time.Second
	hubPongTimeout  = 60 * time.Second
	hubPingInterval = 30 * time.Second

	// Per-connection outbound buffer; a slow consumer past this point
	// is dropped rather than allowed to stall the relay.
	hubSendBuffer = 16
)

// Hub relays snapshots between websocket-connected contexts: a message
// published by one connection is forwarded verbatim to every other
// connection. The hub does not inspect payloads.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*hubConn]struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the hub's logger. Default: slog.Default().
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithCheckOrigin sets the upgrader's origin check.
func WithCheckOrigin(check func(*http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = check
	}
}

// NewHub creates an empty relay hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger: slog.Default(),
		conns:  make(map[*hubConn]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type hubConn struct {
	conn *websocket.Conn
	send chan []byte
}

// ServeHTTP upgrades the request and joins the connection to the relay.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("hub upgrade failed", "error", err)
		return
	}

	hc := &hubConn{
		conn: conn,
		send: make(chan []byte, hubSendBuffer),
	}
	h.mu.Lock()
	h.conns[hc] = struct{}{}
	h.mu.Unlock()

	go h.writePump(hc)
	h.readLoop(hc)
}

func (h *Hub) readLoop(hc *hubConn) {
	defer h.drop(hc)

	hc.conn.SetReadDeadline(time.Now().Add(hubPongTimeout))
	hc.conn.SetPongHandler(func(string) error {
		hc.conn.SetReadDeadline(time.Now().Add(hubPongTimeout))
		return nil
	})

	for {
		_, msg, err := hc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("hub read error", "error", err)
			}
			return
		}
		h.relay(hc, msg)
	}
}

func (h *Hub) relay(from *hubConn, msg []byte) {
	h.mu.Lock()
	targets := make([]*hubConn, 0, len(h.conns))
	for hc := range h.conns {
		if hc != from {
			targets = append(targets, hc)
		}
	}
	h.mu.Unlock()

	for _, hc := range targets {
		select {
		case hc.send <- msg:
		default:
			h.logger.Warn("hub dropping slow connection")
			h.drop(hc)
		}
	}
}

func (h *Hub) writePump(hc *hubConn) {
	ticker := time.NewTicker(hubPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-hc.send:
			if !ok {
				return
			}
			hc.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
			if err := hc.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.drop(hc)
				return
			}
		case <-ticker.C:
			hc.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
			if err := hc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(hc)
				return
			}
		}
	}
}

func (h *Hub) drop(hc *hubConn) {
	h.mu.Lock()
	_, present := h.conns[hc]
	delete(h.conns, hc)
	h.mu.Unlock()

	if present {
		close(hc.send)
		hc.conn.Close()
	}
}

// WSChannel is a Channel backed by a websocket connection to a Hub.
type WSChannel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[int]func(authstate.Snapshot)
	nextSub  int

	closeOnce sync.Once
}

// WSOption configures a WSChannel.
type WSOption func(*WSChannel)

// WithWSLogger sets the channel's logger. Default: slog.Default().
func WithWSLogger(logger *slog.Logger) WSOption {
	return func(c *WSChannel) {
		c.logger = logger
	}
}

// DialWS connects to a relay hub at url (ws:// or wss://).
func DialWS(ctx context.Context, url string, opts ...WSOption) (*WSChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("broadcast: dial %s: %w", url, err)
	}

	c := &WSChannel{
		conn:     conn,
		logger:   slog.Default(),
		handlers: make(map[int]func(authstate.Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()
	return c, nil
}

// Publish sends snap to the hub, which relays it to every other
// connected context.
func (c *WSChannel) Publish(ctx context.Context, snap authstate.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("broadcast: encode snapshot: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("broadcast: publish: %w", err)
	}
	return nil
}

// OnReceive registers handler for snapshots relayed from other contexts.
func (c *WSChannel) OnReceive(handler func(authstate.Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.handlers[id] = handler
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.handlers, id)
			c.mu.Unlock()
		})
	}
}

// Close shuts down the connection.
func (c *WSChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *WSChannel) readLoop() {
	defer c.Close()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("channel read error", "error", err)
			}
			return
		}

		var snap authstate.Snapshot
		if err := json.Unmarshal(msg, &snap); err != nil {
			c.logger.Warn("channel dropping malformed snapshot", "error", err)
			continue
		}
		c.dispatch(snap)
	}
}

func (c *WSChannel) dispatch(snap authstate.Snapshot) {
	c.mu.Lock()
	fns := make([]func(authstate.Snapshot), 0, len(c.handlers))
	for _, fn := range c.handlers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
