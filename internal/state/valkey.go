package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces client state in Valkey.
const keyPrefix = "state:"

// ValkeyRepository stores each value under state:<client>:<key> with a
// sliding TTL.
type ValkeyRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyRepository creates a repository. A zero ttl uses DefaultTTL.
func NewValkeyRepository(client *redis.Client, ttl time.Duration) *ValkeyRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ValkeyRepository{client: client, ttl: ttl}
}

func redisKey(client string, key Key) string {
	return keyPrefix + client + ":" + string(key)
}

func (r *ValkeyRepository) Get(ctx context.Context, client string, key Key) (json.RawMessage, bool, error) {
	val, err := r.client.Get(ctx, redisKey(client, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state get %s: %w", key, err)
	}
	return json.RawMessage(val), true, nil
}

func (r *ValkeyRepository) Set(ctx context.Context, client string, key Key, value json.RawMessage) error {
	if err := r.client.Set(ctx, redisKey(client, key), []byte(value), r.ttl).Err(); err != nil {
		return fmt.Errorf("state set %s: %w", key, err)
	}
	return nil
}

func (r *ValkeyRepository) Delete(ctx context.Context, client string, key Key) error {
	if err := r.client.Del(ctx, redisKey(client, key)).Err(); err != nil {
		return fmt.Errorf("state delete %s: %w", key, err)
	}
	return nil
}

func (r *ValkeyRepository) All(ctx context.Context, client string) (map[Key]json.RawMessage, error) {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = redisKey(client, k)
	}
	vals, err := r.client.MGet(ctx, names...).Result()
	if err != nil {
		return nil, fmt.Errorf("state mget: %w", err)
	}
	out := make(map[Key]json.RawMessage)
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[Keys[i]] = json.RawMessage(s)
		}
	}
	return out, nil
}

func (r *ValkeyRepository) Clear(ctx context.Context, client string) error {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = redisKey(client, k)
	}
	if err := r.client.Del(ctx, names...).Err(); err != nil {
		return fmt.Errorf("state clear: %w", err)
	}
	return nil
}
