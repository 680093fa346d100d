// Package wsapi streams depth snapshots to WebSocket subscribers. It is
// a thin broadcast hub over a *gemmy.MatchingEngine, not a replacement
// for the gRPC dispatcher — clients connect, receive periodic depth
// snapshots, and disconnect; there is no order entry over this path.
package wsapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pepemon42069/gemmy/internal/gemmy"
	"github.com/pepemon42069/gemmy/pkg/log"
)

// Message is the envelope sent to every connected client.
type Message struct {
	Type      string              `json:"type"`
	Depth     *gemmy.OrderbookData `json:"depth,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp int64               `json:"timestamp"`
}

// client is one connected subscriber.
type client struct {
	conn *websocket.Conn
	send chan Message
}

// DepthHub broadcasts periodic depth snapshots from engine to every
// connected WebSocket client.
type DepthHub struct {
	engine      *gemmy.MatchingEngine
	granularity gemmy.Granularity
	maxLevels   int
	interval    time.Duration

	upgrader websocket.Upgrader
	logger   log.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	now func() time.Time
}

// NewDepthHub returns a hub that, once Run is started, broadcasts a
// Depth(granularity, maxLevels) snapshot from engine every interval.
func NewDepthHub(engine *gemmy.MatchingEngine, granularity gemmy.Granularity, maxLevels int, interval time.Duration) *DepthHub {
	return &DepthHub{
		engine:      engine,
		granularity: granularity,
		maxLevels:   maxLevels,
		interval:    interval,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:  log.NewLogger("wsapi"),
		clients: make(map[*client]struct{}),
		now:     time.Now,
	}
}

// ServeHTTP upgrades the connection and registers it as a subscriber
// until it disconnects. A snapshot that finds the client's write queue
// full is skipped for that client; the client stays registered.
func (h *DepthHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan Message, 16)}
	h.register(c)
	defer h.unregister(c)

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *DepthHub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *DepthHub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop discards inbound frames but keeps reading so the connection's
// close frame and any transport errors are observed promptly.
func (h *DepthHub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *DepthHub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Run broadcasts a depth snapshot to every connected client every
// interval, until ctx-like stop channel closes.
func (h *DepthHub) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.broadcastDepth()
		}
	}
}

func (h *DepthHub) broadcastDepth() {
	data := h.engine.Depth(h.granularity, h.maxLevels)
	msg := Message{Type: "depth", Depth: &data, Timestamp: h.now().UnixNano()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping depth snapshot for slow websocket client")
		}
	}
}

// marshalForTest exists so tests can assert on wire shape without
// standing up a real connection.
func marshalForTest(m Message) ([]byte, error) {
	return json.Marshal(m)
}
