// Package domain 包含订单服务的领域模型
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyOrder 订单必须至少包含一个订单行
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrInvalidDiscount 折扣必须落在 [0,1) 区间
	ErrInvalidDiscount = errors.New("discount must be in [0,1)")
	// ErrInvalidQuantity 订单行数量必须为正整数
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

// Order 订单聚合根
// 创建后身份不可变，仅支付方式与整单折扣可修改；
// 订单行与库存扣减在创建后不再变动
type Order struct {
	gorm.Model
	// 业务订单号，对外展示
	OrderNo string `gorm:"column:order_no;type:varchar(64);uniqueIndex;not null" json:"order_no"`
	UserID  uint   `gorm:"column:user_id;index;not null" json:"user_id"`
	// 下单时间
	BillDate time.Time `gorm:"column:bill_date;not null" json:"bill_date"`
	// 支付方式，自由文本
	PaymentMethod string `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`
	// 整单折扣率 [0,1)
	GlobalDiscount decimal.Decimal `gorm:"column:global_discount;type:decimal(5,4);not null;default:0" json:"global_discount"`
	// 各行金额之和（未套用整单折扣）
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	// 套用整单折扣后的应付金额
	TotalAmountDiscounted decimal.Decimal `gorm:"column:total_amount_discounted;type:decimal(12,2);not null" json:"total_amount_discounted"`
	// 税额，当前固定为 0
	Tax   decimal.Decimal `gorm:"column:tax;type:decimal(12,2);not null;default:0" json:"tax"`
	Lines []OrderLine     `gorm:"foreignKey:OrderRowID;constraint:OnDelete:CASCADE" json:"lines"`
}

func (Order) TableName() string { return "orders" }

// OrderLine 订单行
// 单价与折扣是下单时刻的商品快照，不跟随商品后续变动
type OrderLine struct {
	gorm.Model
	OrderRowID uint            `gorm:"column:order_row_id;index;not null" json:"-"`
	ProductID  uint            `gorm:"column:product_id;not null" json:"product_id"`
	Quantity   int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	Discount   decimal.Decimal `gorm:"column:discount;type:decimal(5,4);not null;default:0" json:"discount"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null" json:"total_price"`
}

func (OrderLine) TableName() string { return "order_lines" }
