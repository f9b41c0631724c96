package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// archiveTTL evicts idle room mirrors; every write refreshes it.
const archiveTTL = 24 * time.Hour

// RoomArchive mirrors the latest room snapshot into Redis. The in-memory hub
// stays authoritative; the mirror exists so the REST surface can inspect
// recently active rooms and so idle rooms age out somewhere, since the hub
// itself never deletes them.
type RoomArchive struct {
	rdb *redis.Client
}

// ArchivedRoom is one mirrored snapshot as read back from Redis.
type ArchivedRoom struct {
	ID        string
	Content   string
	UserCount int
	UpdatedAt string
}

func NewRoomArchive(redisAddr string) *RoomArchive {
	return &RoomArchive{rdb: redis.NewClient(&redis.Options{Addr: redisAddr})}
}

// NewRoomArchiveWithClient wires an existing client (tests use miniredis).
func NewRoomArchiveWithClient(rdb *redis.Client) *RoomArchive {
	return &RoomArchive{rdb: rdb}
}

func roomKey(id string) string { return "room:" + id }

// Save writes the room snapshot and refreshes its TTL. A nil archive is a
// no-op so the server runs without Redis in tests and local setups.
func (a *RoomArchive) Save(ctx context.Context, id, content string, userCount int) error {
	if a == nil {
		return nil
	}
	key := roomKey(id)
	if err := a.rdb.HSet(ctx, key, map[string]interface{}{
		"id":        id,
		"content":   content,
		"userCount": userCount,
		"updatedAt": time.Now().Format(time.RFC3339),
	}).Err(); err != nil {
		return fmt.Errorf("failed to archive room %s: %w", id, err)
	}
	a.rdb.Expire(ctx, key, archiveTTL)
	return nil
}

// Load reads a mirrored snapshot back. The second return is false when the
// room was never archived or its TTL expired.
func (a *RoomArchive) Load(ctx context.Context, id string) (ArchivedRoom, bool, error) {
	if a == nil {
		return ArchivedRoom{}, false, nil
	}
	fields, err := a.rdb.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return ArchivedRoom{}, false, fmt.Errorf("failed to load room %s: %w", id, err)
	}
	if len(fields) == 0 {
		return ArchivedRoom{}, false, nil
	}
	count, _ := strconv.Atoi(fields["userCount"])
	return ArchivedRoom{
		ID:        fields["id"],
		Content:   fields["content"],
		UserCount: count,
		UpdatedAt: fields["updatedAt"],
	}, true, nil
}

func (a *RoomArchive) Close() error {
	if a == nil || a.rdb == nil {
		return nil
	}
	return a.rdb.Close()
}
