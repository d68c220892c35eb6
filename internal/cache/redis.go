package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens a client for the given address. It does not dial;
// call Ping to check the connection.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Redis stores facet lists as JSON strings in Redis, shared by every API replica.
// The generation counter lives under KeyGeneration; a missing counter is 0.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedis wraps a Redis client. A non-positive ttl means DefaultTTL.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttlOrDefault(ttl)}
}

func (r *Redis) Get(ctx context.Context, key string) ([]string, int64, bool, error) {
	gen, err := r.client.Get(ctx, KeyGeneration).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("cache.Redis.Get: generation: %w", err)
	}

	raw, err := r.client.Get(ctx, VersionedKey(key, gen)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("cache.Redis.Get: %w", err)
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, 0, false, fmt.Errorf("cache.Redis.Get: decode %s: %w", key, err)
	}
	return values, gen, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, gen int64, values []string) error {
	if values == nil {
		values = []string{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("cache.Redis.Set: encode: %w", err)
	}
	if err := r.client.Set(ctx, VersionedKey(key, gen), string(payload), r.ttl).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Set: %w", err)
	}
	return nil
}

// Invalidate increments the generation. Entries of older generations are
// left to expire.
func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, KeyGeneration).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Invalidate: %w", err)
	}
	return nil
}
