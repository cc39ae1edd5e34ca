package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderNo               string            `json:"order_no"`
	UserID                uint              `json:"user_id"`
	TotalAmountDiscounted decimal.Decimal   `json:"total_amount_discounted"`
	Lines                 []OrderLineChange `json:"lines"`
	OccurredAt            time.Time         `json:"occurred_at"`
}

// OrderLineChange 事件中的订单行摘要
type OrderLineChange struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderUpdatedEvent 订单修改事件
type OrderUpdatedEvent struct {
	OrderNo               string          `json:"order_no"`
	PaymentMethod         string          `json:"payment_method"`
	GlobalDiscount        decimal.Decimal `json:"global_discount"`
	TotalAmountDiscounted decimal.Decimal `json:"total_amount_discounted"`
	OccurredAt            time.Time       `json:"occurred_at"`
}

// OrderDeletedEvent 订单删除事件
type OrderDeletedEvent struct {
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher 订单事件发布接口
// 实现方须与业务写入处于同一事务边界内
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error
	PublishOrderUpdated(ctx context.Context, event OrderUpdatedEvent) error
	PublishOrderDeleted(ctx context.Context, event OrderDeletedEvent) error
}
