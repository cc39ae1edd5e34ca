package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/contextx"
)

// CategoryRepository 分类仓储的 GORM 实现
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.TxFrom(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *CategoryRepository) Save(ctx context.Context, category *domain.Category) error {
	return r.getDB(ctx).Save(category).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.getDB(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	if err := r.getDB(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Delete 删除分类，分类下存在商品时拒绝删除
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	var inUse int64
	if err := db.Model(&domain.Product{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return domain.ErrCategoryInUse
	}
	result := db.Delete(&domain.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
