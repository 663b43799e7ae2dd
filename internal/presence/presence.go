package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store mirrors connection liveness into Redis so operators and sibling
// services can see who is online. The Hub stays the source of truth for
// delivery; this mirror is informational only.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type status struct {
	Status   string `json:"status"`
	SocketID string `json:"socket_id"`
	LastSeen int64  `json:"last_seen"`
}

func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(userID string) string {
	return fmt.Sprintf("%s:presence:%s", s.prefix, userID)
}

func (s *Store) SetOnline(ctx context.Context, userID, socketID string) error {
	b, _ := json.Marshal(status{Status: "online", SocketID: socketID, LastSeen: time.Now().Unix()})
	return s.client.Set(ctx, s.key(userID), b, s.ttl).Err()
}

// SetOffline only clears the entry when socketID still owns it, mirroring the
// identity-guarded unregister of the in-memory registry.
func (s *Store) SetOffline(ctx context.Context, userID, socketID string) error {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	var cur status
	if err := json.Unmarshal(raw, &cur); err == nil && cur.SocketID != socketID {
		return nil
	}
	b, _ := json.Marshal(status{Status: "offline", SocketID: socketID, LastSeen: time.Now().Unix()})
	return s.client.Set(ctx, s.key(userID), b, s.ttl).Err()
}
