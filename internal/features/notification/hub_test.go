package notification

import (
	"sync"
	"testing"

	"github.com/gofiber/contrib/websocket"
)

func TestReconnectSurvivesStaleUnregister(t *testing.T) {
	h := NewHub()
	first := &websocket.Conn{}
	second := &websocket.Conn{}

	h.Register("u1", first)
	h.Register("u1", second)

	// The first handler unwinds after the reconnect; its unregister must
	// not evict the new connection.
	h.Unregister("u1", first)

	h.mu.RLock()
	c, ok := h.clients["u1"]
	h.mu.RUnlock()
	if !ok || c.conn != second {
		t.Fatal("reconnected client lost its registration")
	}

	h.Unregister("u1", second)
	h.mu.RLock()
	_, ok = h.clients["u1"]
	h.mu.RUnlock()
	if ok {
		t.Fatal("client still registered after its own unregister")
	}
}

func TestPushQueuesWithoutTouchingConn(t *testing.T) {
	h := NewHub()
	// Installed directly so no writer goroutine drains the queue; Push
	// must only enqueue, never write to the connection itself.
	c := &client{send: make(chan []byte, sendBuffer)}
	h.clients["u1"] = c

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Push("u1", &Notification{Title: "Requisition decided"})
		}()
	}
	wg.Wait()

	if got := len(c.send); got != 4 {
		t.Errorf("queued pushes = %d, want 4", got)
	}
}

func TestPushDropsWhenQueueFull(t *testing.T) {
	h := NewHub()
	c := &client{send: make(chan []byte, 1)}
	h.clients["u1"] = c

	h.Push("u1", &Notification{Title: "first"})
	// Must return rather than block on a saturated client
	h.Push("u1", &Notification{Title: "second"})

	if got := len(c.send); got != 1 {
		t.Errorf("queued pushes = %d, want 1", got)
	}
}

func TestPushToOfflineUserIsNoop(t *testing.T) {
	h := NewHub()
	h.Push("nobody", &Notification{Title: "offline"})
}
