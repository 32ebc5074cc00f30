package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message types pushed to websocket clients.
const (
	TypeTournamentUpdated = "TOURNAMENT_UPDATED"
	TypeTournamentRemoved = "TOURNAMENT_REMOVED"
)

// Message is the envelope sent to every client in a room.
type Message struct {
	Type    string `json:"type"`
	RoomID  string `json:"room_id"`
	Payload any    `json:"payload"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one websocket connection subscribed to a room.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

// Hub fans messages out to the clients of each room. A room is a
// tournament ID.
//
// Thread-safety: all methods are safe for concurrent use. A client's send
// channel is only closed under the write lock, so broadcasts never send on
// a closed channel.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	closed bool
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[*Client]bool),
		logger: logger,
	}
}

// NewClient creates a client for room. conn may be nil for a client that
// is only drained through Send.
func (h *Hub) NewClient(conn *websocket.Conn, room string) *Client {
	return &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), room: room}
}

// Send exposes the client's outbound queue.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Register adds a client to its room. It reports false once the hub is
// closed; the client's queue is then closed immediately.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return false
	}
	if _, ok := h.rooms[c.room]; !ok {
		h.rooms[c.room] = make(map[*Client]bool)
	}
	h.rooms[c.room][c] = true
	h.logger.Debug("client registered", "room", c.room, "clients", len(h.rooms[c.room]))
	return true
}

// Unregister removes a client and closes its queue. Unknown clients are
// ignored, so both pumps may call it.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[c.room]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
	h.logger.Debug("client unregistered", "room", c.room, "clients", len(clients))
}

// RoomSize returns the number of clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom sends msg to every client in the room. Clients whose
// queue is full skip the message.
func (h *Hub) BroadcastToRoom(room string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("marshal message failed", "room", room, "error", err)
		return
	}

	for c := range clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client queue full, message dropped", "room", room, "type", msg.Type)
		}
	}
}

// SendTo queues msg for one registered client. It reports false when the
// client is gone or its queue is full.
func (h *Hub) SendTo(c *Client, msg Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.rooms[c.room][c] {
		return false
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("marshal message failed", "room", c.room, "error", err)
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close disconnects every client and rejects later registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for room, clients := range h.rooms {
		for c := range clients {
			close(c.send)
		}
		delete(h.rooms, room)
	}
}

// readPump discards inbound messages and unregisters the client when the
// connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "room", c.room, "error", err)
			}
			return
		}
	}
}

// writePump writes queued messages, one per frame, and pings the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Debug("websocket write failed", "room", c.room, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
