// Package mysql 提供购物车的 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
)

// CartRepository 购物车仓储的 GORM 实现
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *CartRepository) Save(ctx context.Context, line *domain.CartLine) error {
	return r.getDB(ctx).Save(line).Error
}

func (r *CartRepository) GetByID(ctx context.Context, id uint) (*domain.CartLine, error) {
	var line domain.CartLine
	if err := r.getDB(ctx).First(&line, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (r *CartRepository) GetByUserAndProduct(ctx context.Context, userID, productID uint) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.getDB(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (r *CartRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.CartLine, error) {
	var lines []*domain.CartLine
	if err := r.getDB(ctx).Where("user_id = ?", userID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *CartRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&domain.CartLine{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCartLineNotFound
	}
	return nil
}

func (r *CartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.getDB(ctx).Where("user_id = ?", userID).Delete(&domain.CartLine{})
	return result.RowsAffected, result.Error
}
