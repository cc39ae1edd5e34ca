// Package domain 包含购物车服务的领域模型
package domain

import (
	"errors"

	"gorm.io/gorm"
)

// ErrCartLineNotFound 购物车行不存在
var ErrCartLineNotFound = errors.New("cart line not found")

// CartLine 购物车行
// 每个 (用户, 商品) 至多一行；购物车不预占库存，
// 数量仅在写入时与当前库存比对
type CartLine struct {
	gorm.Model
	UserID    uint `gorm:"column:user_id;not null;uniqueIndex:idx_user_product" json:"user_id"`
	ProductID uint `gorm:"column:product_id;not null;uniqueIndex:idx_user_product" json:"product_id"`
	Quantity  int  `gorm:"column:quantity;not null" json:"quantity"`
}

func (CartLine) TableName() string { return "cart_lines" }
