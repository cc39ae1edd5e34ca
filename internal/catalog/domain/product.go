// Package domain 包含商品目录服务的领域模型
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSupplierNotFound 供应商不存在
	ErrSupplierNotFound = errors.New("supplier not found")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCategoryInUse 分类下仍有商品，不可删除
	ErrCategoryInUse = errors.New("category still has products")
	// ErrSupplierInUse 供应商下仍有商品，不可删除
	ErrSupplierInUse = errors.New("supplier still has products")
)

// Product 商品实体
// 价格与折扣在订单创建时会被快照，库存只能通过条件更新扣减
type Product struct {
	gorm.Model
	// 商品名称
	Name string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	// 商品描述
	Description string `gorm:"column:description;type:text" json:"description"`
	// 单价
	Price decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	// 折扣率 [0,1)，0 表示无折扣
	Discount decimal.Decimal `gorm:"column:discount;type:decimal(5,4);not null;default:0" json:"discount"`
	// 库存数量，不允许为负
	Stock int `gorm:"column:stock;not null;default:0" json:"stock"`
	// 分类 ID
	CategoryID uint `gorm:"column:category_id;index" json:"category_id"`
	// 供应商 ID
	SupplierID uint `gorm:"column:supplier_id;index" json:"supplier_id"`
}

func (Product) TableName() string { return "products" }

// Category 商品分类
type Category struct {
	gorm.Model
	Name        string `gorm:"column:name;type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
}

func (Category) TableName() string { return "categories" }

// Supplier 供应商
type Supplier struct {
	gorm.Model
	Name  string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email string `gorm:"column:email;type:varchar(255)" json:"email"`
	Phone string `gorm:"column:phone;type:varchar(50)" json:"phone"`
}

func (Supplier) TableName() string { return "suppliers" }
