package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
)

// SupplierRepository 供应商仓储的 GORM 实现
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *SupplierRepository) Save(ctx context.Context, supplier *domain.Supplier) error {
	return r.getDB(ctx).Save(supplier).Error
}

func (r *SupplierRepository) GetByID(ctx context.Context, id uint) (*domain.Supplier, error) {
	var supplier domain.Supplier
	if err := r.getDB(ctx).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]*domain.Supplier, error) {
	var suppliers []*domain.Supplier
	if err := r.getDB(ctx).Order("id").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Delete 删除供应商，供应商下存在商品时拒绝删除
func (r *SupplierRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	var inUse int64
	if err := db.Model(&domain.Product{}).Where("supplier_id = ?", id).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return domain.ErrSupplierInUse
	}
	result := db.Delete(&domain.Supplier{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSupplierNotFound
	}
	return nil
}
