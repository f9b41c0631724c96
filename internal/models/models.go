package models

import "time"

/*** WebSocket wire protocol ***/

// WSFrame is the envelope for every message exchanged over the collab socket.
type WSFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client -> server event names.
const (
	EventAddUser        = "add user"
	EventPosition       = "update-position"
	EventContentInsert  = "update-content-insert"
	EventContentReplace = "update-content-replace"
	EventContentDelete  = "update-content-delete"
)

// Server -> client event names.
const (
	EventRoomJoined      = "room-joined"
	EventUserJoined      = "user-joined"
	EventPositionUpdated = "position-updated"
	EventContentInserted = "content-inserted"
	EventContentReplaced = "content-replaced"
	EventContentDeleted  = "content-deleted"
	EventUserLoggedOut   = "user-logged-out"
)

/*** Room state ***/

// User is one participant record inside a room. The color is assigned on the
// user's first join of that room and reused on every reconnect.
type User struct {
	Username    string    `json:"username"`
	Color       string    `json:"color"`
	ConnectedAt time.Time `json:"connectedAt"`
}

type JoinRequest struct {
	Room string `json:"room,omitempty"`
}

// RoomSnapshot is the reply to a successful "add user" event: everything a
// late joiner needs to initialize its local editor replica.
type RoomSnapshot struct {
	Room    string          `json:"room"`
	Content string          `json:"content"`
	Users   map[string]User `json:"users"`
}

type UserJoined struct {
	Username string `json:"username"`
}

type UserLoggedOut struct {
	Username string `json:"username"`
}

/*** Edit payloads ***/

// Content events carry an incremental edit description plus a recomputed
// full-document snapshot in Content; the server stores only the snapshot.
type ContentInsert struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Content string `json:"content"`
}

type ContentReplace struct {
	Index   int    `json:"index"`
	Length  int    `json:"length"`
	Text    string `json:"text"`
	Content string `json:"content"`
}

type ContentDelete struct {
	Index   int    `json:"index"`
	Length  int    `json:"length"`
	Content string `json:"content"`
}

// RoomStatus is the REST view of a room, served live from the hub or from the
// snapshot archive for rooms that went idle in this process.
type RoomStatus struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	UserCount int    `json:"userCount"`
	Live      bool   `json:"live"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
