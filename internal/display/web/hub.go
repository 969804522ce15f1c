// Package web streams clock frames to browsers over websockets.
//
// Hub is a display.Sink. Frames assembled from SetDigit calls are handed to
// the hub goroutine on Flush; that goroutine owns the set of connected
// clients and fans every frame out to them. A client that cannot keep up is
// disconnected rather than allowed to slow the others down.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zgpcy/ledclock/internal/clockface"
	"github.com/zgpcy/ledclock/internal/display"
	"github.com/zgpcy/ledclock/internal/logger"
)

// Websocket connection tuning
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	clientBuffer   = 8
)

// Frame is the message sent to browsers for every tick
type Frame struct {
	Seq    uint64                 `json:"seq"`
	Digits [display.Positions]int `json:"digits"`
	Text   string                 `json:"text"`
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans clock frames out to websocket clients
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	pending [display.Positions]int
	seq     uint64

	frames     chan Frame
	register   chan *client
	unregister chan *client
	clients    map[*client]struct{}
	count      atomic.Int64
	last       atomic.Pointer[Frame]

	running atomic.Bool
	done    chan struct{}
}

// NewHub creates a hub. Call Run to start delivering frames.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		logger: log.WithFields("component", "web_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 10,
			WriteBufferSize: 1 << 10,
		},
		frames:     make(chan Frame, 1),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

// SetDigit implements display.Sink
func (h *Hub) SetDigit(position, value int) {
	if position < 0 || position >= display.Positions {
		return
	}
	h.mu.Lock()
	h.pending[position] = value
	h.mu.Unlock()
}

// Flush implements display.Flusher. It never blocks; an undelivered frame is
// replaced by the newer one.
func (h *Hub) Flush() {
	h.mu.Lock()
	h.seq++
	f := Frame{Seq: h.seq, Digits: h.pending}
	h.mu.Unlock()

	f.Text = clockface.Digits(f.Digits).String()
	h.last.Store(&f)

	for {
		select {
		case h.frames <- f:
			return
		default:
		}
		select {
		case <-h.frames:
		default:
		}
	}
}

// Last returns the most recent frame, if any
func (h *Hub) Last() (Frame, bool) {
	f := h.last.Load()
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Run delivers frames to clients until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	if !h.running.CompareAndSwap(false, true) {
		h.logger.Warn("Hub already running, skipping")
		return
	}
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info("Web hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("Client connected", "client_id", c.id.String(), "clients", len(h.clients))
			if f, ok := h.Last(); ok {
				h.deliver(c, f)
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("Client disconnected", "client_id", c.id.String(), "clients", len(h.clients))
			}

		case f := <-h.frames:
			for c := range h.clients {
				h.deliver(c, f)
			}
		}
	}
}

// Done is closed when Run returns
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// deliver queues f for c, dropping c if its buffer is full. Hub goroutine only.
func (h *Hub) deliver(c *client, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("Failed to encode frame", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn("Dropping slow client", "client_id", c.id.String())
		h.drop(c)
	}
}

// drop removes c and closes its send channel. Hub goroutine only.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// ServeHTTP upgrades the request to a websocket and streams frames to it
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	case <-r.Context().Done():
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and notices disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket read error", "client_id", c.id.String(), "error", err)
			}
			return
		}
	}
}

// writePump writes queued frames and keepalive pings
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
