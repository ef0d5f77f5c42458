package token

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisBackend keeps a copy of the token server-side, keyed per device.
// The legacy key is kept for read and clear compatibility only; new
// writes go to the canonical key.
type redisBackend struct {
	client   redis.UniversalClient
	key      string
	writable bool
}

func newRedisBackend(client redis.UniversalClient, key string, writable bool) *redisBackend {
	return &redisBackend{client: client, key: key, writable: writable}
}

func (b *redisBackend) Name() string { return "redis:" + b.key }

func (b *redisBackend) Read(ctx context.Context) (string, error) {
	if b.client == nil {
		return "", nil
	}
	v, err := b.client.Get(ctx, b.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (b *redisBackend) Write(ctx context.Context, token string, ttl time.Duration) error {
	if b.client == nil || !b.writable {
		return nil
	}
	return b.client.Set(ctx, b.key, token, ttl).Err()
}

func (b *redisBackend) Clear(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Del(ctx, b.key).Err()
}
