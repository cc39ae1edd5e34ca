package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type cartRepoStub struct {
	lines  map[uint]*cartdomain.CartLine
	nextID uint
}

func newCartRepoStub() *cartRepoStub {
	return &cartRepoStub{lines: map[uint]*cartdomain.CartLine{}, nextID: 1}
}

func (s *cartRepoStub) Save(_ context.Context, line *cartdomain.CartLine) error {
	if line.ID == 0 {
		line.ID = s.nextID
		s.nextID++
	}
	copied := *line
	s.lines[line.ID] = &copied
	return nil
}

func (s *cartRepoStub) GetByID(_ context.Context, id uint) (*cartdomain.CartLine, error) {
	line, ok := s.lines[id]
	if !ok {
		return nil, cartdomain.ErrCartLineNotFound
	}
	copied := *line
	return &copied, nil
}

func (s *cartRepoStub) GetByUserAndProduct(_ context.Context, userID, productID uint) (*cartdomain.CartLine, error) {
	for _, line := range s.lines {
		if line.UserID == userID && line.ProductID == productID {
			copied := *line
			return &copied, nil
		}
	}
	return nil, cartdomain.ErrCartLineNotFound
}

func (s *cartRepoStub) ListByUser(_ context.Context, userID uint) ([]*cartdomain.CartLine, error) {
	var result []*cartdomain.CartLine
	for _, line := range s.lines {
		if line.UserID == userID {
			copied := *line
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (s *cartRepoStub) Delete(_ context.Context, id uint) error {
	if _, ok := s.lines[id]; !ok {
		return cartdomain.ErrCartLineNotFound
	}
	delete(s.lines, id)
	return nil
}

func (s *cartRepoStub) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	var deleted int64
	for id, line := range s.lines {
		if line.UserID == userID {
			delete(s.lines, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *cartRepoStub) snapshot() func() {
	saved := map[uint]cartdomain.CartLine{}
	for id, line := range s.lines {
		saved[id] = *line
	}
	savedNext := s.nextID
	return func() {
		s.lines = map[uint]*cartdomain.CartLine{}
		for id, line := range saved {
			copied := line
			s.lines[id] = &copied
		}
		s.nextID = savedNext
	}
}

type productRepoStub struct {
	products map[uint]*catalogdomain.Product
}

func newProductRepoStub(products ...*catalogdomain.Product) *productRepoStub {
	s := &productRepoStub{products: map[uint]*catalogdomain.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *productRepoStub) Save(_ context.Context, p *catalogdomain.Product) error {
	s.products[p.ID] = p
	return nil
}

func (s *productRepoStub) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *productRepoStub) List(_ context.Context, _ uint, _, _ int) ([]*catalogdomain.Product, int64, error) {
	return nil, 0, nil
}

func (s *productRepoStub) Delete(_ context.Context, id uint) error {
	delete(s.products, id)
	return nil
}

func (s *productRepoStub) DecrementStock(_ context.Context, id uint, quantity int) error {
	p, ok := s.products[id]
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	if p.Stock < quantity {
		return catalogdomain.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

type userRepoStub struct {
	users map[uint]*userdomain.User
}

func newUserRepoStub(ids ...uint) *userRepoStub {
	s := &userRepoStub{users: map[uint]*userdomain.User{}}
	for _, id := range ids {
		s.users[id] = &userdomain.User{Model: gorm.Model{ID: id}}
	}
	return s
}

func (s *userRepoStub) Save(_ context.Context, _ *userdomain.User) error { return nil }

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*userdomain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return u, nil
}

func (s *userRepoStub) GetByUsername(_ context.Context, _ string) (*userdomain.User, error) {
	return nil, userdomain.ErrUserNotFound
}

func (s *userRepoStub) ExistsByUsername(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (s *userRepoStub) List(_ context.Context, _, _ int) ([]*userdomain.User, int64, error) {
	return nil, 0, nil
}

func (s *userRepoStub) Delete(_ context.Context, _ uint) error { return nil }

func (s *userRepoStub) AssignRole(_ context.Context, _ uint, _ *userdomain.Role) error { return nil }

// fakeTxManager 模拟事务语义：回调失败时恢复购物车到调用前的状态
type fakeTxManager struct {
	carts *cartRepoStub
}

func (m *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	restore := m.carts.snapshot()
	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

func product(id uint, price, discount string, stock int) *catalogdomain.Product {
	return &catalogdomain.Product{
		Model:    gorm.Model{ID: id},
		Name:     "product",
		Price:    dec(price),
		Discount: dec(discount),
		Stock:    stock,
	}
}

func newTestService(carts *cartRepoStub, products *productRepoStub, users *userRepoStub) *CartService {
	return NewCartService(carts, products, users, &fakeTxManager{carts: carts}, nil)
}

func TestAddOrUpdateCreatesNewLine(t *testing.T) {
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 5)), newUserRepoStub(1))

	line, err := svc.AddOrUpdate(context.Background(), 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	stored, err := carts.GetByID(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
}

func TestAddOrUpdateMergesQuantities(t *testing.T) {
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 10)), newUserRepoStub(1))

	first, err := svc.AddOrUpdate(context.Background(), 1, 1, 2)
	require.NoError(t, err)

	merged, err := svc.AddOrUpdate(context.Background(), 1, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID, "same (user, product) must stay one line")
	assert.Equal(t, 5, merged.Quantity)
}

func TestAddOrUpdateFailsWhenMergedQuantityExceedsStock(t *testing.T) {
	// 库存 5：第一次加 3 成功，第二次加 3 会合并为 6，失败且行保持 3
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 5)), newUserRepoStub(1))

	first, err := svc.AddOrUpdate(context.Background(), 1, 1, 3)
	require.NoError(t, err)

	_, err = svc.AddOrUpdate(context.Background(), 1, 1, 3)
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	stored, err := carts.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity, "failed merge must not change the stored line")
}

func TestAddOrUpdateNewLineExceedingStock(t *testing.T) {
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 2)), newUserRepoStub(1))

	_, err := svc.AddOrUpdate(context.Background(), 1, 1, 3)
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	lines, _ := carts.ListByUser(context.Background(), 1)
	assert.Empty(t, lines, "nothing persisted on the failure path")
}

func TestAddOrUpdateValidation(t *testing.T) {
	svc := newTestService(newCartRepoStub(), newProductRepoStub(product(1, "1.00", "0", 5)), newUserRepoStub(1))

	_, err := svc.AddOrUpdate(context.Background(), 1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddOrUpdate(context.Background(), 1, 1, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddOrUpdate(context.Background(), 99, 1, 1)
	assert.ErrorIs(t, err, userdomain.ErrUserNotFound)

	_, err = svc.AddOrUpdate(context.Background(), 1, 99, 1)
	assert.ErrorIs(t, err, catalogdomain.ErrProductNotFound)
}

func TestSetQuantityOverwrites(t *testing.T) {
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 10)), newUserRepoStub(1))

	line, err := svc.AddOrUpdate(context.Background(), 1, 1, 2)
	require.NoError(t, err)

	updated, err := svc.SetQuantity(context.Background(), 1, line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)
}

func TestSetQuantityExceedingStockLeavesLineUnchanged(t *testing.T) {
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 5)), newUserRepoStub(1))

	line, err := svc.AddOrUpdate(context.Background(), 1, 1, 2)
	require.NoError(t, err)

	_, err = svc.SetQuantity(context.Background(), 1, line.ID, 6)
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)

	stored, err := carts.GetByID(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
}

func TestSetQuantityUnknownLine(t *testing.T) {
	svc := newTestService(newCartRepoStub(), newProductRepoStub(), newUserRepoStub(1))

	_, err := svc.SetQuantity(context.Background(), 1, 42, 1)
	assert.ErrorIs(t, err, cartdomain.ErrCartLineNotFound)
}

func TestRemove(t *testing.T) {
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 5)), newUserRepoStub(1))

	line, err := svc.AddOrUpdate(context.Background(), 1, 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), 1, line.ID))
	assert.ErrorIs(t, svc.Remove(context.Background(), 1, line.ID), cartdomain.ErrCartLineNotFound)
}

func TestLineOwnershipEnforced(t *testing.T) {
	// 用户 2 操作用户 1 的购物车行：一律按不存在处理
	carts := newCartRepoStub()
	svc := newTestService(carts, newProductRepoStub(product(1, "10.00", "0", 10)), newUserRepoStub(1, 2))

	line, err := svc.AddOrUpdate(context.Background(), 1, 1, 2)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 2, line.ID)
	assert.ErrorIs(t, err, cartdomain.ErrCartLineNotFound)

	_, err = svc.SetQuantity(context.Background(), 2, line.ID, 9)
	assert.ErrorIs(t, err, cartdomain.ErrCartLineNotFound)

	assert.ErrorIs(t, svc.Remove(context.Background(), 2, line.ID), cartdomain.ErrCartLineNotFound)

	stored, err := carts.GetByID(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)

	// 本人不受影响
	_, err = svc.GetByID(context.Background(), 1, line.ID)
	require.NoError(t, err)
}

func TestClearForUser(t *testing.T) {
	carts := newCartRepoStub()
	products := newProductRepoStub(product(1, "10.00", "0", 5), product(2, "2.00", "0", 5))
	svc := newTestService(carts, products, newUserRepoStub(1, 2))

	_, err := svc.AddOrUpdate(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddOrUpdate(context.Background(), 1, 2, 1)
	require.NoError(t, err)
	_, err = svc.AddOrUpdate(context.Background(), 2, 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearForUser(context.Background(), 1))

	mine, _ := carts.ListByUser(context.Background(), 1)
	assert.Empty(t, mine)
	others, _ := carts.ListByUser(context.Background(), 2)
	assert.Len(t, others, 1, "other users' carts are untouched")

	// 空购物车再次清空不是错误
	require.NoError(t, svc.ClearForUser(context.Background(), 1))

	// 用户不存在才是错误
	assert.ErrorIs(t, svc.ClearForUser(context.Background(), 99), userdomain.ErrUserNotFound)
}

func TestListForUserComputesPreviewTotals(t *testing.T) {
	carts := newCartRepoStub()
	products := newProductRepoStub(
		product(1, "19.99", "0.10", 10),
		product(2, "5.00", "0", 10),
	)
	svc := newTestService(carts, products, newUserRepoStub(1))

	_, err := svc.AddOrUpdate(context.Background(), 1, 1, 3)
	require.NoError(t, err)
	_, err = svc.AddOrUpdate(context.Background(), 1, 2, 2)
	require.NoError(t, err)

	view, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	// 53.97 + 10.00
	assert.True(t, dec("63.97").Equal(view.Total), "total: %s", view.Total)
}
