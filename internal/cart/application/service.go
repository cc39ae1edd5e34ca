// Package application 实现购物车的应用服务
//
// 购物车不预占库存：写入时与商品当前库存比对，权威校验发生在下单时
package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/internal/pricing"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// ErrInvalidQuantity 数量必须为正整数
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// TxManager 在单个数据库事务内执行回调
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CartItemView 购物车行的展示视图，金额仅供参考
type CartItemView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CartView 购物车展示视图
type CartView struct {
	Items []CartItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartService 购物车应用服务
type CartService struct {
	carts    cartdomain.CartRepository
	products catalogdomain.ProductRepository
	users    userdomain.UserRepository
	txm      TxManager
	metrics  *metrics.Metrics
}

// NewCartService 创建购物车应用服务
func NewCartService(
	carts cartdomain.CartRepository,
	products catalogdomain.ProductRepository,
	users userdomain.UserRepository,
	txm TxManager,
	m *metrics.Metrics,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		users:    users,
		txm:      txm,
		metrics:  m,
	}
}

func (s *CartService) recordOp(op string) {
	if s.metrics != nil {
		s.metrics.CartOpsTotal.WithLabelValues(op).Inc()
	}
}

// AddOrUpdate 向用户购物车添加商品
// 已存在的行数量累加；合并后数量超过商品当前库存时整个操作失败，
// 购物车保持不变
func (s *CartService) AddOrUpdate(ctx context.Context, userID, productID uint, quantity int) (*cartdomain.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var line *cartdomain.CartLine
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, userID); err != nil {
			return err
		}
		product, err := s.products.GetByID(txCtx, productID)
		if err != nil {
			return err
		}

		existing, err := s.carts.GetByUserAndProduct(txCtx, userID, productID)
		switch {
		case err == nil:
			merged := existing.Quantity + quantity
			if merged > product.Stock {
				return catalogdomain.ErrInsufficientStock
			}
			existing.Quantity = merged
			line = existing
		case errors.Is(err, cartdomain.ErrCartLineNotFound):
			if quantity > product.Stock {
				return catalogdomain.ErrInsufficientStock
			}
			line = &cartdomain.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}
		default:
			return err
		}
		return s.carts.Save(txCtx, line)
	})
	if err != nil {
		return nil, err
	}

	s.recordOp("add")
	logger.Info(ctx, "cart line saved", "user_id", userID, "product_id", productID, "quantity", line.Quantity)
	return line, nil
}

// SetQuantity 覆盖购物车行数量
// 超过商品当前库存时失败，原数量保持不变
func (s *CartService) SetQuantity(ctx context.Context, userID, cartLineID uint, quantity int) (*cartdomain.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var line *cartdomain.CartLine
	err := s.txm.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		line, err = s.getOwnedLine(txCtx, userID, cartLineID)
		if err != nil {
			return err
		}
		product, err := s.products.GetByID(txCtx, line.ProductID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return catalogdomain.ErrInsufficientStock
		}
		line.Quantity = quantity
		return s.carts.Save(txCtx, line)
	})
	if err != nil {
		return nil, err
	}

	s.recordOp("set_quantity")
	return line, nil
}

// Remove 删除单个购物车行
func (s *CartService) Remove(ctx context.Context, userID, cartLineID uint) error {
	if _, err := s.getOwnedLine(ctx, userID, cartLineID); err != nil {
		return err
	}
	if err := s.carts.Delete(ctx, cartLineID); err != nil {
		return err
	}
	s.recordOp("remove")
	return nil
}

// ClearForUser 清空用户购物车；购物车为空不是错误，用户不存在才是
func (s *CartService) ClearForUser(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	deleted, err := s.carts.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.recordOp("clear")
	logger.Info(ctx, "cart cleared", "user_id", userID, "lines_deleted", deleted)
	return nil
}

// GetByID 获取单个购物车行，仅限本人
func (s *CartService) GetByID(ctx context.Context, userID, cartLineID uint) (*cartdomain.CartLine, error) {
	return s.getOwnedLine(ctx, userID, cartLineID)
}

// getOwnedLine 加载购物车行并校验归属
// 他人的行返回 NotFound，不暴露其存在
func (s *CartService) getOwnedLine(ctx context.Context, userID, cartLineID uint) (*cartdomain.CartLine, error) {
	line, err := s.carts.GetByID(ctx, cartLineID)
	if err != nil {
		return nil, err
	}
	if line.UserID != userID {
		return nil, cartdomain.ErrCartLineNotFound
	}
	return line, nil
}

// ListForUser 列出用户购物车并计算参考金额
// 金额使用商品当前价格与折扣，下单时以快照价格为准
func (s *CartService) ListForUser(ctx context.Context, userID uint) (*CartView, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartItemView, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalogdomain.ErrProductNotFound) {
				// 商品已下架的行跳过展示，结账时会报错
				continue
			}
			return nil, err
		}
		lineTotal := pricing.LineTotal(product.Price, line.Quantity, product.Discount)
		view.Items = append(view.Items, CartItemView{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Discount:    product.Discount,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}
	view.Total = view.Total.Round(2)
	return view, nil
}
