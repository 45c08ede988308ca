package product

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//go:generate mockgen -source=product_cache.go -destination=../mock/product/product_cache_mock.go -package=mock
type Cache interface {
	Get(ctx context.Context, id string) (ProductResponse, bool)
	Set(ctx context.Context, id string, res ProductResponse)
	Invalidate(ctx context.Context, id string)
}

const cacheKeyPrefix = "product:"

// redisCache is a read-through cache for product detail lookups. Cache
// failures degrade to a miss; they never fail the request.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) Cache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisCache) Get(ctx context.Context, id string) (ProductResponse, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("product cache get failed", zap.String("id", id), zap.Error(err))
		}
		return ProductResponse{}, false
	}

	var res ProductResponse
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("product cache decode failed", zap.String("id", id), zap.Error(err))
		return ProductResponse{}, false
	}
	return res, true
}

func (c *redisCache) Set(ctx context.Context, id string, res ProductResponse) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKeyPrefix+id, data, c.ttl).Err(); err != nil {
		c.logger.Warn("product cache set failed", zap.String("id", id), zap.Error(err))
	}
}

func (c *redisCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		c.logger.Warn("product cache invalidate failed", zap.String("id", id), zap.Error(err))
	}
}
