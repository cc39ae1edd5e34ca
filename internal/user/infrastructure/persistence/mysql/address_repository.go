package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
)

// AddressRepository 地址仓储的 GORM 实现
type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *AddressRepository) Save(ctx context.Context, address *domain.Address) error {
	return r.getDB(ctx).Save(address).Error
}

func (r *AddressRepository) GetByID(ctx context.Context, id uint) (*domain.Address, error) {
	var address domain.Address
	if err := r.getDB(ctx).First(&address, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Address, error) {
	var addresses []*domain.Address
	if err := r.getDB(ctx).Where("user_id = ?", userID).Order("is_default DESC, id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *AddressRepository) Delete(ctx context.Context, id, userID uint) error {
	result := r.getDB(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepository) ClearDefault(ctx context.Context, userID uint) error {
	return r.getDB(ctx).Model(&domain.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		UpdateColumn("is_default", false).Error
}
