package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"macrocode/internal/metrics"
	"macrocode/internal/models"
	"macrocode/internal/session"
	"macrocode/internal/store"
	"macrocode/internal/utils"
)

type Handlers struct {
	log     *utils.Logger
	hub     *session.Hub
	archive *store.RoomArchive

	archiveMu    sync.Mutex
	archiveLocks map[string]*sync.Mutex
}

func NewHandlers(log *utils.Logger, archive *store.RoomArchive) *Handlers {
	return NewHandlersWithDeps(log, session.NewHub(), archive)
}

func NewHandlersWithDeps(log *utils.Logger, hub *session.Hub, archive *store.RoomArchive) *Handlers {
	return &Handlers{
		log:          log,
		hub:          hub,
		archive:      archive,
		archiveLocks: make(map[string]*sync.Mutex),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) Stats(w http.ResponseWriter, _ *http.Request) {
	rooms, clients := h.hub.Stats()
	writeJSON(w, map[string]int{"rooms": rooms, "clients": clients})
}

// GetRoomStatus serves a room snapshot: live from the hub when the room is
// active in this process, otherwise from the Redis archive.
func (h *Handlers) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "room id required", http.StatusBadRequest)
		return
	}

	if room, ok := h.hub.Get(id); ok {
		content, users := room.Snapshot()
		writeJSON(w, models.RoomStatus{ID: id, Content: content, UserCount: len(users), Live: true})
		return
	}

	archived, ok, err := h.archive.Load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, models.RoomStatus{
		ID:        archived.ID,
		Content:   archived.Content,
		UserCount: archived.UserCount,
		UpdatedAt: archived.UpdatedAt,
	})
}

/*** Collab WebSocket: room join, cursor and content event fan-out ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// CollabWS is the protocol core. Identity must resolve before any room event
// is accepted; an invalid credential closes the connection with an explicit
// policy-violation close frame. Malformed or out-of-order in-room events are
// dropped silently, never echoed back as errors.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	claims, err := h.authenticate(r)
	if err != nil {
		h.log.Warn("collab handshake rejected", "error", err.Error())
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed")
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		return
	}

	metrics.ConnOpened()
	defer metrics.ConnClosed()

	client := session.NewClient(conn, claims.Username)
	defer h.disconnect(client)

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case models.EventAddUser:
			h.handleAddUser(client, frame)

		case models.EventPosition:
			h.handlePosition(client, frame)

		case models.EventContentInsert:
			h.handleContent(client, frame, models.EventContentInserted)

		case models.EventContentReplace:
			h.handleContent(client, frame, models.EventContentReplaced)

		case models.EventContentDelete:
			h.handleContent(client, frame, models.EventContentDeleted)

		default:
			// unknown frame types are dropped
		}
	}
}

func (h *Handlers) authenticate(r *http.Request) (*utils.AccessTokenClaims, error) {
	token, err := utils.TokenFromCookie(r)
	if err != nil {
		return nil, err
	}
	return utils.ValidateAccessToken(token)
}

// handleAddUser resolves or creates the room, registers the user with an
// idempotent color assignment, and replies to the caller alone with the full
// room snapshot. A second "add user" on the same connection is a no-op.
func (h *Handlers) handleAddUser(client *session.Client, frame models.WSFrame) {
	if client.Joined() {
		return
	}

	var req models.JoinRequest
	marshal(frame.Data, &req)

	room := h.hub.GetOrCreate(req.Room)
	user, content, users := room.AddUserAndJoin(client, client.Username, h.hub.Colors(), models.WSFrame{
		Type: models.EventUserJoined,
		Data: models.UserJoined{Username: client.Username},
	})
	client.Join(room.ID, user.Color)

	client.Send(models.WSFrame{
		Type: models.EventRoomJoined,
		Data: models.RoomSnapshot{Room: room.ID, Content: content, Users: users},
	})

	h.archiveRoom(room)
	metrics.RoomEvent(models.EventAddUser)
	h.log.Info("user joined room", "room", room.ID, "username", client.Username)
}

// handlePosition stamps the sender's identity onto the cursor/selection
// payload and fans it out unchanged. Position fields are not validated.
func (h *Handlers) handlePosition(client *session.Client, frame models.WSFrame) {
	if !client.Joined() {
		return
	}
	data := payload(frame.Data)
	if len(data) == 0 {
		return
	}
	room, ok := h.hub.Get(client.Room())
	if !ok {
		return
	}
	room.Broadcast(client, models.WSFrame{
		Type: models.EventPositionUpdated,
		Data: stamp(client, data),
	})
	metrics.RoomEvent(models.EventPosition)
}

// handleContent is shared by insert, replace and delete: store the event's
// full-document snapshot as the new authoritative content and rebroadcast the
// original payload stamped with the sender's identity, atomically per room so
// the frame peers saw last is the snapshot the store kept. Whichever event is
// processed last wins; concurrent edits are not merged.
func (h *Handlers) handleContent(client *session.Client, frame models.WSFrame, outEvent string) {
	if !client.Joined() {
		return
	}
	room, ok := h.hub.Get(client.Room())
	if !ok {
		return
	}

	data := payload(frame.Data)
	content, _ := data["content"].(string)
	room.SetContentAndBroadcast(client, content, models.WSFrame{
		Type: outEvent,
		Data: stamp(client, data),
	})

	h.archiveRoom(room)
	metrics.RoomEvent(frame.Type)
}

// disconnect notifies the room that the client logged out. The user record
// stays in the room's user mapping so rejoining keeps the same color.
func (h *Handlers) disconnect(client *session.Client) {
	if !client.Joined() {
		return
	}
	room, ok := h.hub.Get(client.Room())
	if !ok {
		return
	}
	room.Leave(client)
	room.Broadcast(client, models.WSFrame{
		Type: models.EventUserLoggedOut,
		Data: models.UserLoggedOut{Username: client.Username},
	})
	h.log.Info("user disconnected", "room", room.ID, "username", client.Username)
}

// archiveRoom mirrors the room to Redis off the event path. Writes are
// serialized per room and read the room's current snapshot under that lock,
// so the mirror converges on the latest stored content no matter how the
// write goroutines are scheduled.
func (h *Handlers) archiveRoom(room *session.Room) {
	if h.archive == nil {
		return
	}
	go func() {
		mu := h.roomArchiveLock(room.ID)
		mu.Lock()
		defer mu.Unlock()

		content, users := room.Snapshot()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.archive.Save(ctx, room.ID, content, len(users)); err != nil {
			h.log.Warn("room archive write failed", "room", room.ID, "error", err.Error())
		}
	}()
}

func (h *Handlers) roomArchiveLock(id string) *sync.Mutex {
	h.archiveMu.Lock()
	defer h.archiveMu.Unlock()
	mu, ok := h.archiveLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		h.archiveLocks[id] = mu
	}
	return mu
}

func marshal(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }

// payload views a decoded frame body as a generic map so unrecognized fields
// survive the rebroadcast verbatim.
func payload(data any) map[string]any {
	m, _ := data.(map[string]any)
	return m
}

// stamp copies the payload and overlays the sender's username and color.
func stamp(client *session.Client, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["username"] = client.Username
	out["color"] = client.Color()
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
