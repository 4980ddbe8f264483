// internal/game/registry.go
package game

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Join codes avoid ambiguous characters (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 6

// Registry indexes live rooms by join code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// CreateRoom allocates a fresh room under a unique join code.
func (reg *Registry) CreateRoom() *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = generateCode()
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	room := NewRoom(code, uint64(time.Now().UnixNano()))
	reg.rooms[code] = room
	logrus.Infof("Created room %s", code)
	return room
}

// Get looks up a room by join code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// Remove drops a room from the index.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[code]; ok {
		delete(reg.rooms, code)
		logrus.Infof("Removed room %s", code)
	}
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Rooms returns a snapshot of all live rooms.
func (reg *Registry) Rooms() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		out = append(out, room)
	}
	return out
}

func generateCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand failing is unrecoverable for code generation.
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
