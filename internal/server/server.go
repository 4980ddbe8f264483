// internal/server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/game"
	"github.com/umbrella2kasa/ojamamono-online-sub000/internal/models"
)

// Envelope is the wire frame for every client message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Server owns the websocket endpoint and the per-room fan-out hubs.
type Server struct {
	registry *game.Registry

	// BotDelay overrides the think delay of new rooms when set.
	BotDelay time.Duration

	mu   sync.Mutex
	hubs map[string]*roomHub
}

func NewServer(registry *game.Registry) *Server {
	return &Server{
		registry: registry,
		hubs:     make(map[string]*roomHub),
	}
}

// Routes returns the HTTP mux with the websocket endpoint mounted.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logrus.Warnf("Websocket accept failed: %v", err)
		return
	}

	c := newClient(conn)
	ctx := r.Context()
	go c.writePump(ctx)

	defer s.dropClient(c)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(c, "Malformed message.")
			continue
		}
		s.dispatch(ctx, c, env)
	}
}

// hubFor returns the fan-out hub for a room, creating it and wiring the
// room's broadcast callbacks on first use.
func (s *Server) hubFor(room *game.Room) *roomHub {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hub, ok := s.hubs[room.Code]; ok {
		return hub
	}
	hub := newRoomHub()
	s.hubs[room.Code] = hub

	room.BroadcastFn = func(ev game.GameEvent) {
		hub.broadcast(ev)
	}
	room.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		hub.sendTo(playerID, ev)
	}
	room.OnGameEnd = func(roomCode string, winner string, scores map[uuid.UUID]int) {
		logrus.Infof("Room %s finished, winner: %s", roomCode, winner)
	}
	return hub
}

// dropClient detaches a connection from its room. Seats in a running
// game are kept for reconnection; lobby seats are vacated immediately.
func (s *Server) dropClient(c *client) {
	c.close()
	if c.roomCode == "" {
		return
	}
	room, ok := s.registry.Get(c.roomCode)
	if !ok {
		return
	}
	hub := s.hubFor(room)
	hub.detach(c)

	state := room.State()
	inProgress := state != nil &&
		state.Status != models.StatusLobby && state.Status != models.StatusGameEnd
	if !inProgress {
		room.RemovePlayer(c.playerID)
	}
	if humanCount(room) == 0 || (hub.empty() && !inProgress) {
		s.closeRoom(room.Code)
	}
}

func (s *Server) closeRoom(code string) {
	s.registry.Remove(code)
	s.mu.Lock()
	delete(s.hubs, code)
	s.mu.Unlock()
}

func (s *Server) send(c *client, ev game.GameEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("Failed marshaling event %s: %v", ev.Type, err)
		return
	}
	c.enqueue(data)
}

func (s *Server) sendError(c *client, msg string) {
	s.send(c, game.GameEvent{Type: game.EventError, Data: map[string]string{"message": msg}})
}
