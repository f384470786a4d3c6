package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"cardealer-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders    *mockOrderRepo
	carts     *mockCartRepo
	catalog   *mockCatalogRepo
	users     *mockUserRepo
	tx        *fakeTx
	publisher *recordingPublisher
	uc        *OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(mockOrderRepo),
		carts:     new(mockCartRepo),
		catalog:   new(mockCatalogRepo),
		users:     new(mockUserRepo),
		tx:        &fakeTx{},
		publisher: &recordingPublisher{},
	}
	f.uc = NewOrderUsecase(f.orders, f.carts, f.catalog, f.users, f.tx, f.publisher, newTestCache(), testConfig())
	return f
}

var validCheckout = CheckoutInput{
	ShippingAddress: domain.ShippingAddress{FullName: "Ada Buyer", Phone: "555-0100", Line1: "1 Main St", City: "Springfield"},
	PaymentMethod:   domain.PaymentMethodCard,
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	in := validCheckout
	in.ShippingAddress.City = ""
	_, err := f.uc.Checkout(ctx, "u-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "city")

	in = validCheckout
	in.PaymentMethod = "bitcoin"
	_, err = f.uc.Checkout(ctx, "u-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.users.On("GetByID", ctx, "u-1").Return(&domain.User{ID: "u-1", Email: "buyer@example.com"}, nil)
	f.carts.On("GetByUserID", ctx, "u-1").Return(&domain.Cart{ID: "cart-1"}, nil)
	f.carts.On("GetItems", ctx, "cart-1").Return([]domain.CartItem{}, nil)

	_, err := f.uc.Checkout(ctx, "u-1", validCheckout)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, f.tx.calls)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	sale := decimal.NewFromInt(18000)

	f.users.On("GetByID", ctx, "u-1").Return(&domain.User{ID: "u-1", Email: "buyer@example.com"}, nil)
	f.carts.On("GetByUserID", ctx, "u-1").Return(&domain.Cart{ID: "cart-1"}, nil)
	f.carts.On("GetItems", ctx, "cart-1").Return([]domain.CartItem{
		// stale cart prices are replaced by the catalog's
		{ItemType: domain.ItemTypeCar, ItemID: "c-1", Name: "old", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		{ItemType: domain.ItemTypePart, ItemID: "p-1", Name: "old", Quantity: 2, UnitPrice: decimal.NewFromInt(1)},
	}, nil)
	f.catalog.On("GetItem", mock.Anything, domain.ItemTypeCar, "c-1").Return(&domain.CatalogItem{
		ItemType: domain.ItemTypeCar, ID: "c-1", Name: "2021 Toyota Corolla",
		Price: decimal.NewFromInt(20000), SalePrice: &sale, Stock: 1, IsActive: true,
	}, nil)
	f.catalog.On("GetItem", mock.Anything, domain.ItemTypePart, "p-1").Return(&domain.CatalogItem{
		ItemType: domain.ItemTypePart, ID: "p-1", Name: "Floor mats",
		Price: decimal.RequireFromString("25.50"), Stock: 5, IsActive: true,
	}, nil)

	f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).ID = "o-1"
	}).Return(nil)
	f.catalog.On("AdjustStock", ctx, domain.ItemTypeCar, "c-1", -1).Return(0, nil)
	f.catalog.On("AdjustStock", ctx, domain.ItemTypePart, "p-1", -2).Return(3, nil)
	f.catalog.On("CreateInventoryLog", ctx, mock.MatchedBy(func(l *domain.InventoryLog) bool {
		return l.Reason == domain.StockReasonOrderPlaced && l.OrderID != nil && *l.OrderID == "o-1"
	})).Return(nil).Twice()
	f.orders.On("CreateHistory", ctx, mock.MatchedBy(func(h *domain.OrderHistory) bool {
		return h.NewStatus == domain.OrderStatusPending && h.PreviousStatus == nil
	})).Return(nil)
	f.carts.On("Clear", ctx, "cart-1").Return(nil)

	order, err := f.uc.Checkout(ctx, "u-1", validCheckout)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^CD-\d{8}-[A-Z2-9]{6}$`), order.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "buyer@example.com", order.CustomerEmail)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "2021 Toyota Corolla", order.Items[0].Name)
	assert.Equal(t, "18000", order.Items[0].UnitPrice.String())
	assert.Equal(t, "51", order.Items[1].LineTotal.String())

	// 18051 subtotal ships free; 8% tax = 1444.08
	assert.Equal(t, "18051", order.Subtotal.String())
	assert.True(t, order.ShippingFee.IsZero())
	assert.Equal(t, "1444.08", order.Tax.String())
	assert.Equal(t, "19495.08", order.Total.String())

	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{domain.EventOrderPlaced}, f.publisher.types())
	f.orders.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
	f.carts.AssertExpectations(t)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.users.On("GetByID", ctx, "u-1").Return(&domain.User{ID: "u-1"}, nil)
	f.carts.On("GetByUserID", ctx, "u-1").Return(&domain.Cart{ID: "cart-1"}, nil)
	f.carts.On("GetItems", ctx, "cart-1").Return([]domain.CartItem{
		{ItemType: domain.ItemTypePart, ItemID: "p-1", Quantity: 3},
	}, nil)
	f.catalog.On("GetItem", mock.Anything, domain.ItemTypePart, "p-1").Return(&domain.CatalogItem{
		Name: "Spark plug", Price: decimal.NewFromInt(5), Stock: 2, IsActive: true,
	}, nil)

	_, err := f.uc.Checkout(ctx, "u-1", validCheckout)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, f.tx.calls)
	assert.Empty(t, f.publisher.events)
}

func TestCheckoutPublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.publisher.err = errors.New("broker down")

	f.users.On("GetByID", ctx, "u-1").Return(&domain.User{ID: "u-1"}, nil)
	f.carts.On("GetByUserID", ctx, "u-1").Return(&domain.Cart{ID: "cart-1"}, nil)
	f.carts.On("GetItems", ctx, "cart-1").Return([]domain.CartItem{
		{ItemType: domain.ItemTypePart, ItemID: "p-1", Quantity: 1},
	}, nil)
	f.catalog.On("GetItem", mock.Anything, domain.ItemTypePart, "p-1").Return(&domain.CatalogItem{
		Name: "Wiper", Price: decimal.NewFromInt(12), Stock: 9, IsActive: true,
	}, nil)
	f.orders.On("Create", ctx, mock.Anything).Return(nil)
	f.catalog.On("AdjustStock", ctx, domain.ItemTypePart, "p-1", -1).Return(8, nil)
	f.catalog.On("CreateInventoryLog", ctx, mock.Anything).Return(nil)
	f.orders.On("CreateHistory", ctx, mock.Anything).Return(nil)
	f.carts.On("Clear", ctx, "cart-1").Return(nil)

	order, err := f.uc.Checkout(ctx, "u-1", validCheckout)
	require.NoError(t, err)
	assert.Equal(t, "50", order.ShippingFee.String())
}

func TestGetMyOrderHidesOtherUsersOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByID", ctx, "o-1").Return(&domain.Order{ID: "o-1", UserID: "someone-else"}, nil)

	_, err := f.uc.GetMyOrder(ctx, "u-1", "o-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelRestocksAndRefunds(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
		ID:            "o-1",
		UserID:        "u-1",
		Status:        domain.OrderStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPaid,
		PaymentMethod: domain.PaymentMethodCard,
		Items: []domain.OrderItem{
			{ItemType: domain.ItemTypePart, ItemID: "p-1", Name: "Mats", Quantity: 2},
		},
	}, nil)
	f.catalog.On("AdjustStock", ctx, domain.ItemTypePart, "p-1", 2).Return(7, nil)
	f.catalog.On("CreateInventoryLog", ctx, mock.MatchedBy(func(l *domain.InventoryLog) bool {
		return l.Reason == domain.StockReasonOrderCancelled && l.StockAfter == 7
	})).Return(nil)
	f.orders.On("UpdateStatus", ctx, "o-1", domain.OrderStatusCancelled, mock.MatchedBy(func(r *string) bool {
		return r != nil && *r == "Changed my mind"
	})).Return(nil)
	f.orders.On("UpdatePaymentStatus", ctx, "o-1", domain.PaymentStatusRefunded).Return(nil)
	f.orders.On("CreateHistory", ctx, mock.AnythingOfType("*domain.OrderHistory")).Return(nil).Twice()

	order, err := f.uc.CancelMyOrder(ctx, "u-1", "o-1", "Changed my mind")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	assert.Equal(t, domain.PaymentStatusRefunded, order.PaymentStatus)
	assert.Equal(t, []string{domain.EventOrderStatusChanged, domain.EventOrderPaymentChanged}, f.publisher.types())
	f.orders.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
}

func TestCancelShippedOrderFails(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
		ID: "o-1", UserID: "u-1", Status: domain.OrderStatusShipped,
	}, nil)

	_, err := f.uc.CancelMyOrder(ctx, "u-1", "o-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelSomeoneElsesOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
		ID: "o-1", UserID: "u-2", Status: domain.OrderStatusPending,
	}, nil)

	_, err := f.uc.CancelMyOrder(ctx, "u-1", "o-1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeliveredCashOnDeliveryMarksPaid(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
		ID:            "o-1",
		Status:        domain.OrderStatusShipped,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCashOnDelivery,
	}, nil)
	f.orders.On("UpdateStatus", ctx, "o-1", domain.OrderStatusDelivered, (*string)(nil)).Return(nil)
	f.orders.On("UpdatePaymentStatus", ctx, "o-1", domain.PaymentStatusPaid).Return(nil)
	f.orders.On("CreateHistory", ctx, mock.MatchedBy(func(h *domain.OrderHistory) bool {
		return h.Field == domain.HistoryFieldStatus && *h.Reason == "Status changed from shipped to delivered"
	})).Return(nil)
	f.orders.On("CreateHistory", ctx, mock.MatchedBy(func(h *domain.OrderHistory) bool {
		return h.Field == domain.HistoryFieldPayment && h.NewStatus == domain.PaymentStatusPaid
	})).Return(nil)

	order, err := f.uc.UpdateOrderStatus(ctx, "o-1", domain.OrderStatusDelivered, "", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	f.orders.AssertExpectations(t)
}

func TestUpdateOrderStatusRejectsSkips(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{ID: "o-1", Status: domain.OrderStatusPending}, nil)

	_, err := f.uc.UpdateOrderStatus(ctx, "o-1", domain.OrderStatusShipped, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.UpdateOrderStatus(ctx, "o-1", "lost", "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to paid", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
			ID: "o-1", Status: domain.OrderStatusConfirmed, PaymentStatus: domain.PaymentStatusPending,
		}, nil)
		f.orders.On("UpdatePaymentStatus", ctx, "o-1", domain.PaymentStatusPaid).Return(nil)
		f.orders.On("CreateHistory", ctx, mock.MatchedBy(func(h *domain.OrderHistory) bool {
			return *h.Reason == "Payment status changed: pending -> paid"
		})).Return(nil)

		order, err := f.uc.UpdatePaymentStatus(ctx, "o-1", domain.PaymentStatusPaid, "", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
		assert.Equal(t, []string{domain.EventOrderPaymentChanged}, f.publisher.types())
	})

	t.Run("refunded is terminal", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
			ID: "o-1", PaymentStatus: domain.PaymentStatusRefunded,
		}, nil)

		_, err := f.uc.UpdatePaymentStatus(ctx, "o-1", domain.PaymentStatusPaid, "", "admin-1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("cancelled order cannot be paid", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByIDForUpdate", ctx, "o-1").Return(&domain.Order{
			ID: "o-1", Status: domain.OrderStatusCancelled, PaymentStatus: domain.PaymentStatusFailed,
		}, nil)

		_, err := f.uc.UpdatePaymentStatus(ctx, "o-1", domain.PaymentStatusPaid, "", "admin-1")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestListOrdersValidatesFilter(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	_, _, err := f.uc.ListOrders(ctx, domain.OrderFilter{Status: "teleported"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.orders.On("GetAll", ctx, domain.OrderFilter{UserID: "u-1", Page: 1, Limit: 20}).
		Return([]domain.Order{{ID: "o-1"}}, int64(1), nil)
	orders, page, err := f.uc.GetMyOrders(ctx, "u-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, page.TotalPages)
}
