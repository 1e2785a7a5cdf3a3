package cache

import (
	"context"
	"encoding/json"
	"time"

	"priceboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publicTreeKey = "priceboard:catalog:public"

// CatalogCache keeps the public catalog tree in redis for a short TTL so
// the price list page does not hit postgres on every read. Redis being
// down degrades to uncached reads, never to errors.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a CatalogCache with the given TTL.
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached tree, or ok=false on a miss or redis error.
func (c *CatalogCache) Get(ctx context.Context) (domain.Tree, bool) {
	data, err := c.client.Get(ctx, publicTreeKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var tree domain.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		c.logger.Warn("Catalog cache entry corrupt, dropping", zap.Error(err))
		c.Invalidate(ctx)
		return nil, false
	}

	return tree, true
}

// Set stores the tree under the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, tree domain.Tree) {
	data, err := json.Marshal(tree)
	if err != nil {
		c.logger.Error("Failed to marshal catalog tree for cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, publicTreeKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached tree so the next public read rebuilds it.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, publicTreeKey).Err(); err != nil {
		c.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
