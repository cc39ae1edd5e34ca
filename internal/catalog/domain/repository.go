package domain

import "context"

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// Save 保存或更新商品
	Save(ctx context.Context, product *Product) error
	// GetByID 根据 ID 获取商品；不存在时返回 ErrProductNotFound
	GetByID(ctx context.Context, id uint) (*Product, error)
	// List 分页列出商品，categoryID 为 0 时不过滤
	List(ctx context.Context, categoryID uint, offset, limit int) ([]*Product, int64, error)
	// Delete 删除商品；不存在时返回 ErrProductNotFound
	Delete(ctx context.Context, id uint) error
	// DecrementStock 条件扣减库存：仅当剩余库存足够时扣减，
	// 否则返回 ErrInsufficientStock；商品不存在时返回 ErrProductNotFound
	DecrementStock(ctx context.Context, id uint, quantity int) error
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	// Delete 删除分类；分类下仍有商品时返回 ErrCategoryInUse
	Delete(ctx context.Context, id uint) error
}

// SupplierRepository 供应商仓储接口
type SupplierRepository interface {
	Save(ctx context.Context, supplier *Supplier) error
	GetByID(ctx context.Context, id uint) (*Supplier, error)
	List(ctx context.Context) ([]*Supplier, error)
	// Delete 删除供应商；供应商下仍有商品时返回 ErrSupplierInUse
	Delete(ctx context.Context, id uint) error
}
