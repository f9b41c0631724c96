package session

import (
	"sync"

	"github.com/gorilla/websocket"

	"macrocode/internal/models"
)

// Client is one connected editor socket: the write half of the connection
// plus the identity resolved at handshake time and the room binding
// established by the first successful join. Username is immutable; the room
// binding and color are set exactly once.
type Client struct {
	Conn     *websocket.Conn
	Username string

	mu     sync.Mutex
	hook   func(models.WSFrame)
	color  string
	joined bool
	room   string
}

func NewClient(conn *websocket.Conn, username string) *Client {
	return &Client{Conn: conn, Username: username}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.WriteJSON(frame)
}

// Join binds the client to a room exactly once. It reports false when the
// client already joined; a repeated "add user" is a silent no-op, not an
// error.
func (c *Client) Join(roomID, color string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.joined {
		return false
	}
	c.joined = true
	c.room = roomID
	c.color = color
	return true
}

func (c *Client) Joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// Room returns the bound room id, or "" before a successful join.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Color returns the display color assigned at join time.
func (c *Client) Color() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}
