package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	"app/internal/event"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

// トランザクションはそのままfnを実行する（合流済み扱い）
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartRepoMock) Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error {
	args := m.Called(ctx, userID, productID, addQty)
	return args.Error(0)
}

func (m *CartRepoMock) ClearByUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *ProductRepoMock) DecrementStock(ctx context.Context, productID int64, qty int64) (model.Product, error) {
	args := m.Called(ctx, productID, qty)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) CreateDetails(ctx context.Context, orderID int64, details []model.OrderDetail) error {
	args := m.Called(ctx, orderID, details)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListDetails(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	args := m.Called(ctx, orderID)
	details, _ := args.Get(0).([]model.OrderDetail)
	return details, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) CreateFullOrder(ctx context.Context, order model.Order, details []model.OrderDetail, userID int64) (model.Order, error) {
	args := m.Called(ctx, order, details, userID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

type BusMock struct{ mock.Mock }

func (m *BusMock) Publish(ctx context.Context, ev event.StockUpdated) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *BusMock) Subscribe(h event.Handler) {
	m.Called(h)
}

func newOrderUsecase(carts *CartRepoMock, products *ProductRepoMock, orders *OrderRepoMock, bus *BusMock) *usecase.OrderUsecase {
	return usecase.NewOrderUsecase(fakeTxManager{}, carts, products, orders, bus)
}

// =====================
// CreateOrderFromCart
// =====================

// カート = [A×2 @1000, B×1 @2000] → total 4000、明細2行、カート削除
func TestOrderUsecase_CreateOrderFromCart_Success(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)

	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	lines := []model.CartLine{
		{UserID: userID, ProductID: 10, Quantity: 2},
		{UserID: userID, ProductID: 20, Quantity: 1},
	}
	carts.On("ListByUser", mock.Anything, userID).Return(lines, nil)

	products.On("FindByIDs", mock.Anything, []int64{10, 20}).Return([]model.Product{
		{ID: 10, Name: "A", Price: 1000, Stock: 5},
		{ID: 20, Name: "B", Price: 2000, Stock: 3},
	}, nil)

	var gotOrder model.Order
	var gotDetails []model.OrderDetail
	orders.On("CreateFullOrder", mock.Anything, mock.Anything, mock.Anything, userID).
		Run(func(args mock.Arguments) {
			gotOrder = args.Get(1).(model.Order)
			gotDetails = args.Get(2).([]model.OrderDetail)
		}).
		Return(model.Order{
			ID:     100,
			UserID: userID,
			Status: model.OrderStatusPending,
			Total:  4000,
			Details: []model.OrderDetail{
				{ID: 1, OrderID: 100, ProductID: 10, Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
				{ID: 2, OrderID: 100, ProductID: 20, Quantity: 1, UnitPrice: 2000, Subtotal: 2000},
			},
		}, nil)

	bus.On("Publish", mock.Anything, event.StockUpdated{OrderID: 100, ProductIDs: []int64{10, 20}}).Return(nil)

	uc := newOrderUsecase(carts, products, orders, bus)
	out, err := uc.CreateOrderFromCart(ctx, userID)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)
	assert.Equal(t, "PENDING", out.Status)
	assert.Equal(t, int64(4000), out.Total)
	assert.Len(t, out.Details, 2)

	// 書き込まれた注文のtotalは明細小計の合計と一致する
	assert.Equal(t, int64(4000), gotOrder.Total)
	var sum int64
	for _, d := range gotDetails {
		sum += d.Subtotal
	}
	assert.Equal(t, gotOrder.Total, sum)

	// 明細IDは注文内1始まりの連番、単価は読んだ時点のスナップショット
	assert.Equal(t, int64(1), gotDetails[0].ID)
	assert.Equal(t, int64(2), gotDetails[1].ID)
	assert.Equal(t, int64(1000), gotDetails[0].UnitPrice)
	assert.Equal(t, int64(2000), gotDetails[0].Subtotal)
	assert.Equal(t, int64(2000), gotDetails[1].UnitPrice)

	carts.AssertExpectations(t)
	products.AssertExpectations(t)
	orders.AssertExpectations(t)
	bus.AssertExpectations(t)
}

// 空カートは注文を作らない
func TestOrderUsecase_CreateOrderFromCart_EmptyCart(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	carts.On("ListByUser", mock.Anything, int64(1)).Return([]model.CartLine{}, nil)

	uc := newOrderUsecase(carts, products, orders, bus)
	_, err := uc.CreateOrderFromCart(context.Background(), 1)

	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	orders.AssertNotCalled(t, "CreateFullOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

// 在庫不足は注文を作る前に拒否
func TestOrderUsecase_CreateOrderFromCart_InsufficientStock(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	carts.On("ListByUser", mock.Anything, int64(1)).Return([]model.CartLine{
		{UserID: 1, ProductID: 10, Quantity: 5},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Product{
		{ID: 10, Price: 1000, Stock: 2},
	}, nil)

	uc := newOrderUsecase(carts, products, orders, bus)
	_, err := uc.CreateOrderFromCart(context.Background(), 1)

	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
	orders.AssertNotCalled(t, "CreateFullOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

// 並行チェックアウトで減算が拒否された場合も在庫不足で返す
func TestOrderUsecase_CreateOrderFromCart_ConcurrentDecrementConflict(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	carts.On("ListByUser", mock.Anything, int64(1)).Return([]model.CartLine{
		{UserID: 1, ProductID: 10, Quantity: 2},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Product{
		{ID: 10, Price: 1000, Stock: 2},
	}, nil)
	orders.On("CreateFullOrder", mock.Anything, mock.Anything, mock.Anything, int64(1)).
		Return(model.Order{}, repo.ErrInsufficientStock)

	uc := newOrderUsecase(carts, products, orders, bus)
	_, err := uc.CreateOrderFromCart(context.Background(), 1)

	assert.ErrorIs(t, err, usecase.ErrInsufficientStock)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

// カートに無い商品参照
func TestOrderUsecase_CreateOrderFromCart_ProductMissing(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	carts.On("ListByUser", mock.Anything, int64(1)).Return([]model.CartLine{
		{UserID: 1, ProductID: 99, Quantity: 1},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{99}).Return([]model.Product{}, nil)

	uc := newOrderUsecase(carts, products, orders, bus)
	_, err := uc.CreateOrderFromCart(context.Background(), 1)

	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

// 書き込み失敗はそのまま上へ、イベントは出さない
func TestOrderUsecase_CreateOrderFromCart_WriteFailure(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	dbErr := errors.New("db down")

	carts.On("ListByUser", mock.Anything, int64(1)).Return([]model.CartLine{
		{UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Product{
		{ID: 10, Price: 1000, Stock: 5},
	}, nil)
	orders.On("CreateFullOrder", mock.Anything, mock.Anything, mock.Anything, int64(1)).
		Return(model.Order{}, dbErr)

	uc := newOrderUsecase(carts, products, orders, bus)
	_, err := uc.CreateOrderFromCart(context.Background(), 1)

	assert.ErrorIs(t, err, dbErr)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

// イベント発行の失敗は注文を失敗させない
func TestOrderUsecase_CreateOrderFromCart_PublishFailureIsIgnored(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	carts.On("ListByUser", mock.Anything, int64(1)).Return([]model.CartLine{
		{UserID: 1, ProductID: 10, Quantity: 1},
	}, nil)
	products.On("FindByIDs", mock.Anything, []int64{10}).Return([]model.Product{
		{ID: 10, Price: 1000, Stock: 5},
	}, nil)
	orders.On("CreateFullOrder", mock.Anything, mock.Anything, mock.Anything, int64(1)).
		Return(model.Order{ID: 7, UserID: 1, Status: model.OrderStatusPending, Total: 1000}, nil)
	bus.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := newOrderUsecase(carts, products, orders, bus)
	out, err := uc.CreateOrderFromCart(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
}

// =====================
// GetOrder
// =====================

func TestOrderUsecase_GetOrder_NotOwnedLooksLikeNotFound(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{ID: 100, UserID: 2}, nil)

	uc := newOrderUsecase(carts, products, orders, bus)
	_, err := uc.GetOrder(context.Background(), 1, 100)

	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

// 後から商品価格が変わっても明細のスナップショットは動かない
func TestOrderUsecase_GetOrder_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	carts := new(CartRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	bus := new(BusMock)

	orders.On("FindByID", mock.Anything, int64(100)).
		Return(model.Order{ID: 100, UserID: 1, Status: model.OrderStatusPending, Total: 2000}, nil)
	orders.On("ListDetails", mock.Anything, int64(100)).Return([]model.OrderDetail{
		{ID: 1, OrderID: 100, ProductID: 10, Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
	}, nil)

	uc := newOrderUsecase(carts, products, orders, bus)
	out, err := uc.GetOrder(context.Background(), 1, 100)

	assert.NoError(t, err)
	assert.Equal(t, int64(1000), out.Details[0].UnitPrice)
	assert.Equal(t, int64(2000), out.Details[0].Subtotal)
	// 商品側の現在価格は一切参照しない
	products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
