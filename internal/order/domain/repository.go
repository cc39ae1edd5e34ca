package domain

import "context"

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Save 连同订单行一起保存订单
	Save(ctx context.Context, order *Order) error
	// GetByID 获取订单（含订单行）；不存在时返回 ErrOrderNotFound
	GetByID(ctx context.Context, id uint) (*Order, error)
	// GetByOrderNo 按业务订单号获取订单（含订单行）
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	List(ctx context.Context, offset, limit int) ([]*Order, int64, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*Order, int64, error)
	// Update 保存订单可变字段的变更
	Update(ctx context.Context, order *Order) error
	// Delete 删除订单及其订单行
	Delete(ctx context.Context, id uint) error
}
