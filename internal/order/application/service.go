// Package application 实现订单服务的应用层逻辑
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/internal/pricing"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/idgen"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// TxManager 在单个数据库事务内执行回调
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductCache 商品读缓存的失效入口
// 库存扣减提交后调用，避免目录继续展示售前库存
type ProductCache interface {
	InvalidateProduct(ctx context.Context, productID uint)
}

// OrderItemRequest 下单请求中的单个条目
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderCommand 下单命令
type CreateOrderCommand struct {
	UserID         uint               `json:"user_id"`
	PaymentMethod  string             `json:"payment_method"`
	GlobalDiscount decimal.Decimal    `json:"global_discount"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderCommand 订单修改命令，nil 字段表示不修改
type UpdateOrderCommand struct {
	PaymentMethod  *string          `json:"payment_method"`
	GlobalDiscount *decimal.Decimal `json:"global_discount"`
}

// OrderService 订单应用服务
//
// 每个写操作都是一个事务单元：校验、库存扣减、订单落库与
// 事件写入要么全部生效，要么全部回滚
type OrderService struct {
	orders   domain.OrderRepository
	products catalogdomain.ProductRepository
	users    userdomain.UserRepository
	carts    cartdomain.CartRepository
	events   domain.EventPublisher
	txm      TxManager
	cache    ProductCache
	metrics  *metrics.Metrics
}

// NewOrderService 创建订单应用服务
func NewOrderService(
	orders domain.OrderRepository,
	products catalogdomain.ProductRepository,
	users userdomain.UserRepository,
	carts cartdomain.CartRepository,
	events domain.EventPublisher,
	txm TxManager,
	productCache ProductCache,
	m *metrics.Metrics,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		events:   events,
		txm:      txm,
		cache:    productCache,
		metrics:  m,
	}
}

// CreateOrder 创建订单
//
// 条目按调用方给定顺序依次处理，同一商品出现多次时库存扣减
// 逐行累计生效。任一条目校验失败，整个事务回滚：不留下任何
// 库存扣减，也不落任何订单记录
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	// 负数数量会让条件扣减变成加库存，必须在进事务前拦下
	for _, item := range cmd.Items {
		if item.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
	}
	if !pricing.ValidDiscount(cmd.GlobalDiscount) {
		return nil, domain.ErrInvalidDiscount
	}

	orderNo, err := idgen.NextStringID("ORD")
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNo:        orderNo,
		UserID:         cmd.UserID,
		BillDate:       time.Now(),
		PaymentMethod:  cmd.PaymentMethod,
		GlobalDiscount: cmd.GlobalDiscount,
		Tax:            decimal.Zero,
	}

	err = s.txm.WithTx(ctx, func(txCtx context.Context) error {
		return s.createOrderTx(txCtx, cmd, order)
	})
	if err != nil {
		s.recordCheckoutFailure(err)
		logger.Error(ctx, "order creation failed", "user_id", cmd.UserID, "error", err)
		return nil, err
	}

	s.observeCreated(ctx, order)
	return order, nil
}

// createOrderTx 在既有事务内执行下单核心流程
func (s *OrderService) createOrderTx(txCtx context.Context, cmd CreateOrderCommand, order *domain.Order) error {
	if _, err := s.users.GetByID(txCtx, cmd.UserID); err != nil {
		return err
	}

	total := decimal.Zero
	for _, item := range cmd.Items {
		product, err := s.products.GetByID(txCtx, item.ProductID)
		if err != nil {
			return err
		}

		line := domain.OrderLine{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			UnitPrice:  product.Price,
			Discount:   product.Discount,
			TotalPrice: pricing.LineTotal(product.Price, item.Quantity, product.Discount),
		}

		// 条件扣减立即生效，同一请求中后续条目看到的是已扣减后的库存
		if err := s.products.DecrementStock(txCtx, product.ID, item.Quantity); err != nil {
			if errors.Is(err, catalogdomain.ErrInsufficientStock) {
				return fmt.Errorf("product %d: %w", product.ID, err)
			}
			return err
		}

		order.Lines = append(order.Lines, line)
		total = total.Add(line.TotalPrice)
	}

	order.TotalAmount = total.Round(2)
	order.TotalAmountDiscounted = pricing.OrderTotalDiscounted(order.TotalAmount, order.GlobalDiscount)

	if err := s.orders.Save(txCtx, order); err != nil {
		return err
	}

	event := domain.OrderCreatedEvent{
		OrderNo:               order.OrderNo,
		UserID:                order.UserID,
		TotalAmountDiscounted: order.TotalAmountDiscounted,
		OccurredAt:            time.Now(),
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, domain.OrderLineChange{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return s.events.PublishOrderCreated(txCtx, event)
}

func (s *OrderService) observeCreated(ctx context.Context, order *domain.Order) {
	// 扣减已提交，目录缓存里的库存随之过期
	if s.cache != nil {
		seen := make(map[uint]struct{}, len(order.Lines))
		for _, line := range order.Lines {
			if _, ok := seen[line.ProductID]; ok {
				continue
			}
			seen[line.ProductID] = struct{}{}
			s.cache.InvalidateProduct(ctx, line.ProductID)
		}
	}
	if s.metrics != nil {
		s.metrics.OrdersTotal.Inc()
		s.metrics.OrderLinesTotal.Add(float64(len(order.Lines)))
		units := 0
		for _, line := range order.Lines {
			units += line.Quantity
		}
		s.metrics.StockDecrements.Add(float64(units))
	}
	logger.Info(ctx, "order created",
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"lines", len(order.Lines),
		"total", order.TotalAmountDiscounted.String(),
	)
}

// CreateOrderFromCart 将用户购物车一次性结算为订单
//
// 订单创建与购物车清空处于同一事务：任一环节失败则购物车
// 与库存均保持原状
func (s *OrderService) CreateOrderFromCart(ctx context.Context, userID uint, paymentMethod string, globalDiscount decimal.Decimal) (*domain.Order, error) {
	if !pricing.ValidDiscount(globalDiscount) {
		return nil, domain.ErrInvalidDiscount
	}

	orderNo, err := idgen.NextStringID("ORD")
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		OrderNo:        orderNo,
		UserID:         userID,
		BillDate:       time.Now(),
		PaymentMethod:  paymentMethod,
		GlobalDiscount: globalDiscount,
		Tax:            decimal.Zero,
	}

	err = s.txm.WithTx(ctx, func(txCtx context.Context) error {
		lines, err := s.carts.ListByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyOrder
		}

		cmd := CreateOrderCommand{
			UserID:         userID,
			PaymentMethod:  paymentMethod,
			GlobalDiscount: globalDiscount,
		}
		for _, line := range lines {
			cmd.Items = append(cmd.Items, OrderItemRequest{ProductID: line.ProductID, Quantity: line.Quantity})
		}

		if err := s.createOrderTx(txCtx, cmd, order); err != nil {
			return err
		}
		_, err = s.carts.DeleteByUser(txCtx, userID)
		return err
	})
	if err != nil {
		s.recordCheckoutFailure(err)
		logger.Error(ctx, "cart checkout failed", "user_id", userID, "error", err)
		return nil, err
	}

	s.observeCreated(ctx, order)
	return order, nil
}

func (s *OrderService) recordCheckoutFailure(err error) {
	if s.metrics == nil {
		return
	}
	reason := "internal"
	switch {
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, catalogdomain.ErrProductNotFound), errors.Is(err, userdomain.ErrUserNotFound):
		reason = "not_found"
	case errors.Is(err, domain.ErrInvalidDiscount), errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity):
		reason = "invalid_request"
	}
	s.metrics.CheckoutFailures.WithLabelValues(reason).Inc()
}

// UpdateOrder 修改订单的支付方式与整单折扣，仅限下单人
//
// 只有实际变化的字段才落库；整单折扣变化时基于既有总额重算
// 应付金额。两个字段都未变化时不产生任何写入，原样返回订单
func (s *OrderService) UpdateOrder(ctx context.Context, userID, orderID uint, cmd UpdateOrderCommand) (*domain.Order, error) {
	if cmd.GlobalDiscount != nil && !pricing.ValidDiscount(*cmd.GlobalDiscount) {
		return nil, domain.ErrInvalidDiscount
	}

	var order *domain.Order
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.getOwnedOrder(txCtx, userID, orderID)
		if err != nil {
			return err
		}

		changed := false
		if cmd.PaymentMethod != nil && *cmd.PaymentMethod != order.PaymentMethod {
			order.PaymentMethod = *cmd.PaymentMethod
			changed = true
		}
		if cmd.GlobalDiscount != nil && !cmd.GlobalDiscount.Equal(order.GlobalDiscount) {
			order.GlobalDiscount = *cmd.GlobalDiscount
			order.TotalAmountDiscounted = pricing.OrderTotalDiscounted(order.TotalAmount, order.GlobalDiscount)
			changed = true
		}
		if !changed {
			return nil
		}

		if err := s.orders.Update(txCtx, order); err != nil {
			return err
		}
		return s.events.PublishOrderUpdated(txCtx, domain.OrderUpdatedEvent{
			OrderNo:               order.OrderNo,
			PaymentMethod:         order.PaymentMethod,
			GlobalDiscount:        order.GlobalDiscount,
			TotalAmountDiscounted: order.TotalAmountDiscounted,
			OccurredAt:            time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder 删除订单及其订单行
//
// 删除不回补库存：订单删除视为管理性修正而非取消
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	return s.txm.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.GetByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := s.orders.Delete(txCtx, orderID); err != nil {
			return err
		}
		return s.events.PublishOrderDeleted(txCtx, domain.OrderDeletedEvent{
			OrderNo:    order.OrderNo,
			UserID:     order.UserID,
			OccurredAt: time.Now(),
		})
	})
}

// GetOrder 获取订单详情，仅限下单人
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uint) (*domain.Order, error) {
	return s.getOwnedOrder(ctx, userID, orderID)
}

// getOwnedOrder 加载订单并校验归属
// 他人的订单返回 NotFound，不暴露其存在
func (s *OrderService) getOwnedOrder(ctx context.Context, userID, orderID uint) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNo 按业务订单号获取订单
func (s *OrderService) GetOrderByNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	return s.orders.GetByOrderNo(ctx, orderNo)
}

// GetOrderItems 获取订单行，仅限下单人
func (s *OrderService) GetOrderItems(ctx context.Context, userID, orderID uint) ([]domain.OrderLine, error) {
	order, err := s.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return order.Lines, nil
}

// ListOrders 分页列出全部订单
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int) ([]*domain.Order, int64, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.orders.List(ctx, offset, limit)
}

// ListOrdersForUser 分页列出用户订单
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID uint, page, pageSize int) ([]*domain.Order, int64, error) {
	offset, limit := normalizePage(page, pageSize)
	return s.orders.ListByUser(ctx, userID, offset, limit)
}

func normalizePage(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
