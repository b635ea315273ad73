package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"landshare/internal/platform/redis"
	"landshare/pkg/domain"
)

// Cache holds assembled portfolio views for a short TTL. A nil Cache (or a
// Cache over a nil client) is a no-op, so callers never branch on whether
// Redis is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(addr domain.Address) string {
	return "portfolio:" + addr.String()
}

// Get returns the cached view for addr, or nil on miss.
func (c *Cache) Get(ctx context.Context, addr domain.Address) (*View, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, cacheKey(addr)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("portfolio cache get: %w", err)
	}
	var view View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("portfolio cache decode: %w", err)
	}
	return &view, nil
}

// Put stores the view for the configured TTL.
func (c *Cache) Put(ctx context.Context, view *View) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("portfolio cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(view.Address), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("portfolio cache put: %w", err)
	}
	return nil
}

// Invalidate drops the cached view for addr.
func (c *Cache) Invalidate(ctx context.Context, addr domain.Address) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, cacheKey(addr)).Err(); err != nil {
		return fmt.Errorf("portfolio cache invalidate: %w", err)
	}
	return nil
}
