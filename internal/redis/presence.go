package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStatus is the cached presence record for one user.
type PresenceStatus struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"` // online, away, offline
	LastSeen time.Time `json:"last_seen"`
}

// PresenceStore caches presence in Redis with a TTL so a crashed client
// falls back to offline without an explicit status call.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const (
	presenceKeyPrefix = "presence:"
	presenceOnlineSet = "presence:online"
)

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// SetStatus records the user's status. Offline entries are kept longer so
// last-seen queries keep working after the online TTL lapses.
func (p *PresenceStore) SetStatus(ctx context.Context, userID, status string, lastSeen time.Time) error {
	record := PresenceStatus{UserID: userID, Status: status, LastSeen: lastSeen}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ttl := p.ttl
	if status == "offline" {
		ttl = 24 * time.Hour
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, data, ttl)
	if status == "offline" {
		pipe.SRem(ctx, presenceOnlineSet, userID)
	} else {
		pipe.SAdd(ctx, presenceOnlineSet, userID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Heartbeat refreshes the presence TTL without changing the status.
func (p *PresenceStore) Heartbeat(ctx context.Context, userID string) error {
	return p.client.Expire(ctx, presenceKeyPrefix+userID, p.ttl).Err()
}

func (p *PresenceStore) GetStatus(ctx context.Context, userID string) (PresenceStatus, error) {
	data, err := p.client.Get(ctx, presenceKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return PresenceStatus{UserID: userID, Status: "offline"}, nil
	}
	if err != nil {
		return PresenceStatus{}, err
	}
	var status PresenceStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return PresenceStatus{}, err
	}
	return status, nil
}

func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}
