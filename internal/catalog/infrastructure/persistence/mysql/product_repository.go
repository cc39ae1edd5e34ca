// Package mysql 提供商品目录的 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
)

// ProductRepository 商品仓储的 GORM 实现
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// getDB 优先使用上下文中的事务句柄
func (r *ProductRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save 保存或更新商品
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.getDB(ctx).Save(product).Error
}

// GetByID 根据 ID 获取商品
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.getDB(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List 分页列出商品
func (r *ProductRepository) List(ctx context.Context, categoryID uint, offset, limit int) ([]*domain.Product, int64, error) {
	var (
		products []*domain.Product
		total    int64
	)
	query := r.getDB(ctx).Model(&domain.Product{})
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Delete 删除商品
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DecrementStock 条件扣减库存
// 使用单条 UPDATE 保证并发下库存不会被扣成负数
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, quantity int) error {
	db := r.getDB(ctx)
	result := db.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 区分商品不存在与库存不足
		var count int64
		if err := db.Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrProductNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}
