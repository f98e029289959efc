// Package rediscache wraps read-mostly repositories with a Redis
// read-through cache.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	categoriesKey = "pcdjobs:categories:v1"
	resourcesKey  = "pcdjobs:resources:v1"
)

// categoryCache serves the full vocabularies from Redis. Lookups by id go
// straight to the wrapped repository. Redis errors fall back to it too.
type categoryCache struct {
	next   domain.CategoryRepository
	client redis.Cmdable
	ttl    time.Duration
}

// NewCategoryCache decorates repo with a cache of the category and
// resource lists
func NewCategoryCache(repo domain.CategoryRepository, client redis.Cmdable, ttl time.Duration) domain.CategoryRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &categoryCache{next: repo, client: client, ttl: ttl}
}

func (c *categoryCache) ListCategories(ctx context.Context) ([]domain.DisabilityCategory, error) {
	var categories []domain.DisabilityCategory
	if c.get(ctx, categoriesKey, &categories) {
		return categories, nil
	}

	categories, err := c.next.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, categoriesKey, categories)
	return categories, nil
}

func (c *categoryCache) ListResources(ctx context.Context) ([]domain.AccessibilityResource, error) {
	var resources []domain.AccessibilityResource
	if c.get(ctx, resourcesKey, &resources) {
		return resources, nil
	}

	resources, err := c.next.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, resourcesKey, resources)
	return resources, nil
}

func (c *categoryCache) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]domain.DisabilityCategory, error) {
	return c.next.GetCategoriesByIDs(ctx, ids)
}

func (c *categoryCache) GetResourcesByIDs(ctx context.Context, ids []int64) ([]domain.AccessibilityResource, error) {
	return c.next.GetResourcesByIDs(ctx, ids)
}

func (c *categoryCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WarnContext(ctx, "Category cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Log.WarnContext(ctx, "Category cache entry is corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *categoryCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Log.WarnContext(ctx, "Category cache write failed", "key", key, "error", err)
	}
}
