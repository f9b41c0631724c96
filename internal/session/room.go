package session

import (
	"sync"
	"time"

	"macrocode/internal/models"
)

// Room holds the authoritative document content and the participants of one
// collaborative editing session.
type Room struct {
	ID      string
	mu      sync.Mutex
	clients map[*Client]struct{}
	content string
	users   map[string]models.User
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[*Client]struct{}),
		users:   make(map[string]models.User),
	}
}

// AddUser records a participant, allocating a color from alloc the first time
// this username appears in the room. Rejoining returns the stored record
// unchanged, so a username keeps its color across reconnects.
func (r *Room) AddUser(username string, alloc *ColorAllocator) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		return u
	}
	u := models.User{
		Username:    username,
		Color:       alloc.Next(),
		ConnectedAt: time.Now(),
	}
	r.users[username] = u
	return u
}

// SetContent overwrites the stored document with the sender's full snapshot.
// Last writer wins; there is no merge and no version check.
func (r *Room) SetContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
}

// SetContentAndBroadcast stores the sender's full snapshot and fans frame out
// to every other client in one critical section. Store and fan-out must not
// interleave across events: peers and late joiners have to agree on which
// snapshot was applied last.
func (r *Room) SetContentAndBroadcast(sender *Client, content string, frame models.WSFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
	for c := range r.clients {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// AddUserAndJoin registers the user record, announces the join to the members
// already present, admits the client to the broadcast group and returns the
// snapshot for the caller, all in one critical section so the announcement
// order matches the user mapping every snapshot reports.
func (r *Room) AddUserAndJoin(c *Client, username string, alloc *ColorAllocator, announce models.WSFrame) (models.User, string, map[string]models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		u = models.User{
			Username:    username,
			Color:       alloc.Next(),
			ConnectedAt: time.Now(),
		}
		r.users[username] = u
	}

	for member := range r.clients {
		member.Send(announce)
	}
	r.clients[c] = struct{}{}

	users := make(map[string]models.User, len(r.users))
	for name, record := range r.users {
		users[name] = record
	}
	return u, r.content, users
}

// Snapshot returns the current document and a copy of the user mapping.
func (r *Room) Snapshot() (string, map[string]models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make(map[string]models.User, len(r.users))
	for name, u := range r.users {
		users[name] = u
	}
	return r.content, users
}

func (r *Room) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

// Leave removes the client from the broadcast group and reports how many
// remain. The user record stays in the room: a disconnected user is still
// listed in snapshots served to later joiners.
func (r *Room) Leave(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
	return len(r.clients)
}

func (r *Room) GetClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Broadcast fans frame out to every client in the room except sender.
// Fire-and-forget: there are no delivery acknowledgements.
func (r *Room) Broadcast(sender *Client, frame models.WSFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}
