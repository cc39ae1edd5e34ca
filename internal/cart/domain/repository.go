package domain

import "context"

// CartRepository 购物车仓储接口
type CartRepository interface {
	Save(ctx context.Context, line *CartLine) error
	// GetByID 获取购物车行；不存在时返回 ErrCartLineNotFound
	GetByID(ctx context.Context, id uint) (*CartLine, error)
	// GetByUserAndProduct 按 (用户, 商品) 获取购物车行
	GetByUserAndProduct(ctx context.Context, userID, productID uint) (*CartLine, error)
	ListByUser(ctx context.Context, userID uint) ([]*CartLine, error)
	Delete(ctx context.Context, id uint) error
	// DeleteByUser 清空用户购物车，返回删除行数
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}
