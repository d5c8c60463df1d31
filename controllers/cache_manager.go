package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nkozdemir/fakestore-backend/models"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"
	defaultCacheTTL        = 5 * time.Minute
)

// CacheManager handles Redis caching for catalog reads. All operations are
// best-effort: a cache failure never fails the request.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewCacheManager creates a CacheManager. A nil client disables caching.
func NewCacheManager(rdb *redis.Client) *CacheManager {
	return &CacheManager{redis: rdb, ttl: defaultCacheTTL}
}

func (cm *CacheManager) enabled() bool {
	return cm != nil && cm.redis != nil
}

// GetProduct retrieves a cached product detail.
func (cm *CacheManager) GetProduct(ctx context.Context, productID int) (*models.Product, bool) {
	if !cm.enabled() {
		return nil, false
	}
	cached, err := cm.redis.Get(ctx, productCachePrefix+strconv.Itoa(productID)).Result()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if err := json.Unmarshal([]byte(cached), &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a product detail without blocking the request.
func (cm *CacheManager) SetProductAsync(product *models.Product) {
	if !cm.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err), zap.Int("product_id", product.ID))
			return
		}
		if err := cm.redis.Set(ctx, productCachePrefix+strconv.Itoa(product.ID), payload, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.Error(err), zap.Int("product_id", product.ID))
		}
	}()
}

// GetProductList retrieves a cached listing page for the current cache
// version.
func (cm *CacheManager) GetProductList(ctx context.Context, page, limit int, category string) (map[string]interface{}, bool) {
	if !cm.enabled() {
		return nil, false
	}
	version, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		return nil, false
	}
	cached, err := cm.redis.Get(ctx, cm.listKey(version, page, limit, category)).Result()
	if err != nil {
		return nil, false
	}
	var response map[string]interface{}
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return response, true
}

// SetProductListAsync caches a listing page without blocking the request.
func (cm *CacheManager) SetProductListAsync(page, limit int, category string, response map[string]interface{}) {
	if !cm.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
		if err != nil {
			// Seed the version so subsequent pages can cache.
			version = 1
			if err := cm.redis.SetNX(ctx, cacheVersionKey, version, 0).Err(); err != nil {
				return
			}
		}
		payload, err := json.Marshal(response)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(ctx, cm.listKey(version, page, limit, category), payload, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate drops the detail entry for a product and bumps the list cache
// version, orphaning every cached listing page.
func (cm *CacheManager) Invalidate(productID int) {
	if !cm.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := cm.redis.Del(ctx, productCachePrefix+strconv.Itoa(productID)).Err(); err != nil {
			zap.L().Warn("Failed to drop cached product", zap.Error(err), zap.Int("product_id", productID))
		}
		if err := cm.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
			zap.L().Warn("Failed to bump product cache version", zap.Error(err))
		}
	}()
}

func (cm *CacheManager) listKey(version int64, page, limit int, category string) string {
	return fmt.Sprintf("%s%d:p%d:l%d:c%s", productListCachePrefix, version, page, limit, category)
}
