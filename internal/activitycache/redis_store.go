package activitycache

import (
	"context"
	"errors"
	"time"

	"youthunion-chat/internal/common/database"
)

// DefaultSnapshotTTL bounds how long a snapshot outlives its writer.
const DefaultSnapshotTTL = 24 * time.Hour

// RedisStore keeps the snapshot as one JSON value, shared by every replica.
type RedisStore struct {
	client *database.RedisClient
	key    string
	ttl    time.Duration
}

func NewRedisStore(client *database.RedisClient, key string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	return s.client.SetJSON(ctx, s.key, snap, s.ttl)
}

// Load returns nil without error when no snapshot exists.
func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	err := s.client.GetJSON(ctx, s.key, &snap)
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
