package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache holds raw list payloads per resource. The catalog is shared
// data: every signed-in user sees the same lists, so entries are keyed
// by resource only, never by user or token.
type ListCache interface {
	Get(ctx context.Context, resource string) ([]byte, bool, error)
	Set(ctx context.Context, resource string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, resource string) error
}

type NoopListCache struct{}

func NewNoopListCache() *NoopListCache {
	return &NoopListCache{}
}

func (c *NoopListCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NoopListCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (c *NoopListCache) Invalidate(context.Context, string) error {
	return nil
}

type listCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryListCache struct {
	mu   sync.RWMutex
	data map[string]listCacheEntry
}

func NewInMemoryListCache() *InMemoryListCache {
	return &InMemoryListCache{data: make(map[string]listCacheEntry)}
}

func (c *InMemoryListCache) Get(_ context.Context, resource string) ([]byte, bool, error) {
	now := time.Now().UTC()
	c.mu.RLock()
	entry, ok := c.data[resource]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.data, resource)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (c *InMemoryListCache) Set(_ context.Context, resource string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[resource] = listCacheEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (c *InMemoryListCache) Invalidate(_ context.Context, resource string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, resource)
	return nil
}

type RedisListCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisListCache(client redis.UniversalClient, prefix string) *RedisListCache {
	if prefix == "" {
		prefix = "catalog_cache"
	}
	return &RedisListCache{client: client, prefix: prefix}
}

func (c *RedisListCache) Get(ctx context.Context, resource string) ([]byte, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(resource)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *RedisListCache) Set(ctx context.Context, resource string, payload []byte, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(resource), payload, ttl).Err()
}

func (c *RedisListCache) Invalidate(ctx context.Context, resource string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(resource)).Err()
}

func (c *RedisListCache) key(resource string) string {
	return fmt.Sprintf("%s:data:%s", c.prefix, normalizeResource(resource))
}

func normalizeResource(resource string) string {
	resource = strings.Trim(resource, "/")
	resource = strings.ReplaceAll(resource, "/", ":")
	return strings.ToLower(resource)
}
