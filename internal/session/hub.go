package session

import (
	"sync"

	"github.com/google/uuid"
)

// Hub is the room store: one authoritative Room per id, plus the process-wide
// color allocator shared by all rooms. Rooms live for the process lifetime;
// the snapshot archive covers eviction of idle rooms outside this process.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	colors *ColorAllocator
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]*Room),
		colors: NewColorAllocator(),
	}
}

// GetOrCreate resolves id to a room, creating an empty one on first sight.
// An empty id allocates a fresh unique room id. Client-supplied ids are
// accepted as-is: there is no whitelist, an unknown id just gets an empty
// placeholder room.
func (h *Hub) GetOrCreate(id string) *Room {
	if id == "" {
		id = uuid.NewString()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r
	}
	r := NewRoom(id)
	h.rooms[id] = r
	return r
}

func (h *Hub) Get(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// Colors exposes the shared allocator for room user registration.
func (h *Hub) Colors() *ColorAllocator { return h.colors }

// Stats reports the number of rooms and currently connected clients.
func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rooms {
		clients += r.GetClientCount()
	}
	return len(h.rooms), clients
}
