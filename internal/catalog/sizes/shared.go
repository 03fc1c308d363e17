package sizes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisListStore keeps id lists in Redis as JSON arrays with a TTL.
type RedisListStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListStore(client *redis.Client, ttl time.Duration) *RedisListStore {
	return &RedisListStore{client: client, ttl: ttl}
}

// GetIDs reports false without error when the key is absent.
func (s *RedisListStore) GetIDs(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, fmt.Errorf("decode id list %s: %w", key, err)
	}
	return ids, true, nil
}

func (s *RedisListStore) SetIDs(ctx context.Context, key string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode id list %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
