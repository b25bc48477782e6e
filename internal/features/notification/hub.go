package notification

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// sendBuffer bounds how many undelivered pushes a slow client may queue.
const sendBuffer = 16

// client pairs a websocket connection with its outbound queue. All writes
// go through the queue and a single writer goroutine; websocket conns
// allow at most one concurrent writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			// Client went away; the read loop unregisters it
			return
		}
	}
}

// Hub tracks live websocket connections keyed by user ID so notifications
// can be pushed as they are created. A user who is offline simply misses
// the push; the notification is still persisted.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if old, ok := h.clients[userID]; ok {
		close(old.send)
	}
	h.clients[userID] = c
	h.mu.Unlock()

	go c.writeLoop()
}

// Unregister drops the user's registration, but only while conn is still
// the stored connection; a reconnect may already have replaced it.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[userID]
	if !ok || c.conn != conn {
		return
	}
	delete(h.clients, userID)
	close(c.send)
}

// Push queues a notification for the user's live connection, if any. A
// client whose queue is full loses the push rather than blocking the
// request that produced it.
func (h *Hub) Push(userID string, n *Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}

	// The read lock also excludes Register/Unregister closing the
	// channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	if !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
