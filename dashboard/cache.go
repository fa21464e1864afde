// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/claim-ledger/models"
)

// Cache holds the last computed summary for the cooldown period
type Cache interface {
	// Get reports ok=false on a miss
	Get(ctx context.Context) (sum models.DashboardSummary, ok bool, err error)
	Set(ctx context.Context, sum models.DashboardSummary, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// MemoryCache keeps the summary in process
type MemoryCache struct {
	mu      sync.Mutex
	sum     models.DashboardSummary
	expires time.Time
	valid   bool
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context) (models.DashboardSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || !c.now().Before(c.expires) {
		return models.DashboardSummary{}, false, nil
	}
	return c.sum, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, sum models.DashboardSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sum = sum
	c.expires = c.now().Add(ttl)
	c.valid = true
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	return nil
}

// RedisKey is where RedisCache stores the summary
const RedisKey = "claim-ledger:dashboard:summary"

// RedisCache shares the summary between server instances
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context) (models.DashboardSummary, bool, error) {
	raw, err := c.rdb.Get(ctx, RedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DashboardSummary{}, false, nil
	}
	if err != nil {
		return models.DashboardSummary{}, false, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var sum models.DashboardSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return models.DashboardSummary{}, false, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return sum, true, nil
}

func (c *RedisCache) Set(ctx context.Context, sum models.DashboardSummary, ttl time.Duration) error {
	raw, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.rdb.Set(ctx, RedisKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, RedisKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary: %w", err)
	}
	return nil
}
