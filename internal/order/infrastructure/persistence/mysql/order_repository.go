// Package mysql 提供订单的 MySQL 仓储实现
package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
)

// OrderRepository 订单仓储的 GORM 实现
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save 连同订单行一起保存订单
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return r.getDB(ctx).Create(order).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	if err := r.getDB(ctx).Preload("Lines").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	var order domain.Order
	err := r.getDB(ctx).Preload("Lines").Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, int64, error) {
	return r.list(ctx, r.getDB(ctx).Model(&domain.Order{}), offset, limit)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*domain.Order, int64, error) {
	query := r.getDB(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)
	return r.list(ctx, query, offset, limit)
}

func (r *OrderRepository) list(_ context.Context, query *gorm.DB, offset, limit int) ([]*domain.Order, int64, error) {
	var (
		orders []*domain.Order
		total  int64
	)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Lines").Order("id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update 保存订单可变字段的变更
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.getDB(ctx).Model(order).Updates(map[string]interface{}{
		"payment_method":          order.PaymentMethod,
		"global_discount":         order.GlobalDiscount,
		"total_amount_discounted": order.TotalAmountDiscounted,
	}).Error
}

// Delete 删除订单及其订单行
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	if err := db.Where("order_row_id = ?", id).Delete(&domain.OrderLine{}).Error; err != nil {
		return err
	}
	result := db.Delete(&domain.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
