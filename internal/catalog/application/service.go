// Package application 实现商品目录的应用服务
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       int             `json:"stock"`
	CategoryID  uint            `json:"category_id"`
	SupplierID  uint            `json:"supplier_id"`
}

// UpdateProductCommand 更新商品命令
type UpdateProductCommand struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       *int            `json:"stock"`
	CategoryID  uint            `json:"category_id"`
	SupplierID  uint            `json:"supplier_id"`
}

// CatalogService 商品目录应用服务
type CatalogService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	suppliers  domain.SupplierRepository
	cache      *cache.RedisCache
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	suppliers domain.SupplierRepository,
	redisCache *cache.RedisCache,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		cache:      redisCache,
	}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

// CreateProduct 创建商品
func (s *CatalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.CategoryID > 0 {
		if _, err := s.categories.GetByID(ctx, cmd.CategoryID); err != nil {
			return nil, err
		}
	}
	if cmd.SupplierID > 0 {
		if _, err := s.suppliers.GetByID(ctx, cmd.SupplierID); err != nil {
			return nil, err
		}
	}
	product := &domain.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Discount:    cmd.Discount,
		Stock:       cmd.Stock,
		CategoryID:  cmd.CategoryID,
		SupplierID:  cmd.SupplierID,
	}
	if err := s.products.Save(ctx, product); err != nil {
		logger.Error(ctx, "failed to create product", "name", cmd.Name, "error", err)
		return nil, err
	}
	logger.Info(ctx, "product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// UpdateProduct 更新商品，更新后失效缓存
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name != "" {
		product.Name = cmd.Name
	}
	if cmd.Description != "" {
		product.Description = cmd.Description
	}
	if !cmd.Price.IsZero() {
		product.Price = cmd.Price
	}
	product.Discount = cmd.Discount
	if cmd.Stock != nil {
		product.Stock = *cmd.Stock
	}
	if cmd.CategoryID > 0 {
		if _, err := s.categories.GetByID(ctx, cmd.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = cmd.CategoryID
	}
	if cmd.SupplierID > 0 {
		if _, err := s.suppliers.GetByID(ctx, cmd.SupplierID); err != nil {
			return nil, err
		}
		product.SupplierID = cmd.SupplierID
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	return product, nil
}

// DeleteProduct 删除商品
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateProduct(ctx, id)
	logger.Info(ctx, "product deleted", "product_id", id)
	return nil
}

// GetProduct 获取商品详情，走 cache-aside
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if s.cache != nil {
		var cached domain.Product
		if err := s.cache.GetJSON(ctx, productCacheKey(id), &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn(ctx, "product cache read failed", "product_id", id, "error", err)
		}
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, productCacheKey(id), product, cache.DefaultTTL); err != nil {
			logger.Warn(ctx, "product cache write failed", "product_id", id, "error", err)
		}
	}
	return product, nil
}

// ListProducts 分页列出商品
func (s *CatalogService) ListProducts(ctx context.Context, categoryID uint, page, pageSize int) ([]*domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.products.List(ctx, categoryID, (page-1)*pageSize, pageSize)
}

func (s *CatalogService) invalidateProduct(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		logger.Warn(ctx, "product cache invalidation failed", "product_id", id, "error", err)
	}
}

// CreateCategory 创建分类
func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{Name: name, Description: description}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories 列出全部分类
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// DeleteCategory 删除分类
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categories.Delete(ctx, id)
}

// CreateSupplier 创建供应商
func (s *CatalogService) CreateSupplier(ctx context.Context, name, email, phone string) (*domain.Supplier, error) {
	supplier := &domain.Supplier{Name: name, Email: email, Phone: phone}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// ListSuppliers 列出全部供应商
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	return s.suppliers.List(ctx)
}

// DeleteSupplier 删除供应商
func (s *CatalogService) DeleteSupplier(ctx context.Context, id uint) error {
	return s.suppliers.Delete(ctx, id)
}
