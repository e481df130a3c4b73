// Package feed streams table events to spectators over websockets.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/siliconcasino/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send control frames.
	maxMessageSize = 512

	defaultSendBuffer = 256
)

// Message is the JSON frame sent to spectators.
type Message struct {
	Type    string     `json:"type"`
	TableID string     `json:"table_id"`
	Event   game.Event `json:"event"`
}

// MessageTypeEvent marks a frame carrying a table event.
const MessageTypeEvent = "event"

// Option configures a Hub.
type Option func(*Hub)

// WithSendBuffer sets how many frames may queue for one spectator before
// it is disconnected.
func WithSendBuffer(n int) Option {
	return func(h *Hub) { h.sendBuffer = n }
}

// WithTableLookup makes the hub reject subscriptions to unknown tables.
func WithTableLookup(exists func(tableID string) bool) Option {
	return func(h *Hub) { h.exists = exists }
}

// Hub fans table events out to websocket spectators. A spectator watches
// one table, or every table when it subscribes without one.
type Hub struct {
	logger     *log.Logger
	upgrader   websocket.Upgrader
	sendBuffer int
	exists     func(string) bool

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub with no spectators.
func NewHub(logger *log.Logger, opts ...Option) *Hub {
	h := &Hub{
		logger: logger.WithPrefix("feed"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sendBuffer: defaultSendBuffer,
		clients:    make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and subscribes it to ?table=<id>.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table != "" && h.exists != nil && !h.exists(table) {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:   h,
		conn:  conn,
		table: table,
		send:  make(chan []byte, h.sendBuffer),
		done:  make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Spectator connected", "table", table, "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

// Deliver sends an event to every spectator of its table. Spectators whose
// queue is full are disconnected.
func (h *Hub) Deliver(tableID string, e game.Event) {
	data, err := json.Marshal(Message{Type: MessageTypeEvent, TableID: tableID, Event: e})
	if err != nil {
		h.logger.Error("Failed to encode event", "table", tableID, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if c.table != "" && c.table != tableID {
			continue
		}
		if !c.enqueue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Spectator too slow, disconnecting", "table", c.table)
		c.close()
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	table     string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.unregister(c)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// readPump discards anything the spectator sends and notices when it goes
// away.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Spectator read error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.logger.Debug("Failed to write to spectator", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
