// internal/server/hub.go
package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/game"
)

// client is one websocket connection bound to a seat.
type client struct {
	conn     *websocket.Conn
	playerID uuid.UUID
	roomCode string
	send     chan []byte
	closed   chan struct{}
	once     sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// enqueue hands a payload to the write pump without blocking the caller.
// Slow consumers are disconnected rather than stalling the room.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	case <-c.closed:
	default:
		logrus.Warnf("Client %s send buffer full, dropping connection", c.playerID)
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		if c.conn != nil {
			_ = c.conn.Close(websocket.StatusNormalClosure, "")
		}
	})
}

// writePump flushes queued payloads to the socket.
func (c *client) writePump(ctx context.Context) {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
				c.close()
				return
			}
		case <-c.closed:
			return
		case <-ctx.Done():
			c.close()
			return
		}
	}
}

// roomHub fans room events out to the room's connected clients. Room
// callbacks run with the room lock held, so delivery must never block.
type roomHub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

func newRoomHub() *roomHub {
	return &roomHub{clients: make(map[uuid.UUID]*client)}
}

func (h *roomHub) attach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.playerID]; ok && old != c {
		old.close()
	}
	h.clients[c.playerID] = c
}

func (h *roomHub) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[c.playerID]; ok && cur == c {
		delete(h.clients, c.playerID)
	}
}

func (h *roomHub) empty() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) == 0
}

func (h *roomHub) broadcast(ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("Failed marshaling event %s: %v", ev.Type, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(data)
	}
}

func (h *roomHub) sendTo(playerID uuid.UUID, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("Failed marshaling event %s: %v", ev.Type, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[playerID]; ok {
		c.enqueue(data)
	}
}
