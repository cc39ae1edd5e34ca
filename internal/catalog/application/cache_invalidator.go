package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductCacheInvalidator 供绕过目录服务直接扣减库存的上下文
// 在事务提交后删除商品读缓存
type ProductCacheInvalidator struct {
	cache *cache.RedisCache
}

// NewProductCacheInvalidator 创建商品缓存失效器
func NewProductCacheInvalidator(c *cache.RedisCache) *ProductCacheInvalidator {
	return &ProductCacheInvalidator{cache: c}
}

// InvalidateProduct 删除单个商品的缓存键
// 删除失败只记日志，下一次 TTL 到期后缓存自然收敛
func (p *ProductCacheInvalidator) InvalidateProduct(ctx context.Context, productID uint) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, productCacheKey(productID)); err != nil {
		logger.Warn(ctx, "product cache invalidation failed", "product_id", productID, "error", err)
	}
}
