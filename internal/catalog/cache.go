package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const listCacheKey = "catalog:materials"

// Cache keeps the material list in Redis between writes. A nil Cache is a
// no-op so the service works without Redis in tests and small deployments.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs the cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

// GetList returns the cached material list, or ok=false on miss or error.
func (c *Cache) GetList(ctx context.Context) ([]MaterialWithStock, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var materials []MaterialWithStock
	if err := json.Unmarshal(data, &materials); err != nil {
		return nil, false
	}
	return materials, true
}

// SetList stores the material list.
func (c *Cache) SetList(ctx context.Context, materials []MaterialWithStock) {
	if c == nil {
		return
	}
	data, err := json.Marshal(materials)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, listCacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached list after a write.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, listCacheKey).Err()
}
