package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/cache"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"

	"golang.org/x/sync/errgroup"
)

const (
	orderNumberAttempts = 3
	priceLookupWorkers  = 4
	maxNotesLength      = 1000
)

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	cartRepo    domain.CartRepository
	catalogRepo domain.CatalogRepository
	userRepo    domain.UserRepository
	txManager   domain.TransactionManager
	publisher   domain.OrderEventPublisher
	cache       cache.CacheService
	pricing     domain.PricingConfig
	now         func() time.Time
}

func NewOrderUsecase(
	orderRepo domain.OrderRepository,
	cartRepo domain.CartRepository,
	catalogRepo domain.CatalogRepository,
	userRepo domain.UserRepository,
	txManager domain.TransactionManager,
	publisher domain.OrderEventPublisher,
	cache cache.CacheService,
	cfg *config.Config,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		publisher:   publisher,
		cache:       cache,
		pricing:     PricingFromConfig(cfg),
		now:         time.Now,
	}
}

type CheckoutInput struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
}

func (in CheckoutInput) validate() error {
	if missing := in.ShippingAddress.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: shipping address is missing %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !domain.IsValidPaymentMethod(in.PaymentMethod) {
		return fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, in.PaymentMethod)
	}
	if len(in.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes are limited to %d characters", domain.ErrInvalidInput, maxNotesLength)
	}
	return nil
}

// Checkout turns the user's cart into a pending order. Prices are re-read from the
// catalog; stock is decremented and the cart cleared in the same transaction.
func (u *OrderUsecase) Checkout(ctx context.Context, userID string, in CheckoutInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	cart, err := u.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	lines, err := u.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines, err = u.repriceLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	totals := u.pricing.Compute(lines)

	order := &domain.Order{
		UserID:          userID,
		CustomerEmail:   user.Email,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        totals.Subtotal,
		ShippingFee:     totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		ShippingAddress: in.ShippingAddress,
		Notes:           strings.TrimSpace(in.Notes),
		Items:           make([]domain.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ItemType:  line.ItemType,
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = utils.GenerateOrderNumber(u.now())
		err = u.txManager.Do(ctx, func(ctx context.Context) error {
			return u.placeOrder(ctx, order, cart.ID)
		})
		if err == nil || attempt == orderNumberAttempts || !isOrderNumberConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	u.invalidateAfterStockChange()
	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("total", order.Total.StringFixed(2)).
		Msg("Order placed")
	u.publish(ctx, domain.EventOrderPlaced, order)
	return order, nil
}

// repriceLines refreshes every cart line from the catalog concurrently.
func (u *OrderUsecase) repriceLines(ctx context.Context, lines []domain.CartItem) ([]domain.CartItem, error) {
	priced := make([]domain.CartItem, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceLookupWorkers)
	for i, line := range lines {
		g.Go(func() error {
			item, err := u.catalogRepo.GetItem(gctx, line.ItemType, line.ItemID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: %s is no longer available", domain.ErrInvalidInput, line.Name)
				}
				return err
			}
			if !item.IsActive {
				return fmt.Errorf("%w: %s is no longer available", domain.ErrInvalidInput, item.Name)
			}
			if line.Quantity > item.Stock {
				return fmt.Errorf("%w: only %d of %s available", domain.ErrInsufficientStock, item.Stock, item.Name)
			}
			line.Name = item.Name
			line.UnitPrice = item.EffectivePrice()
			priced[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return priced, nil
}

func (u *OrderUsecase) placeOrder(ctx context.Context, order *domain.Order, cartID string) error {
	if err := u.orderRepo.Create(ctx, order); err != nil {
		return err
	}

	for _, item := range order.Items {
		stock, err := u.catalogRepo.AdjustStock(ctx, item.ItemType, item.ItemID, -item.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, item.Name)
			}
			return fmt.Errorf("reserve stock: %w", err)
		}
		if err := u.catalogRepo.CreateInventoryLog(ctx, &domain.InventoryLog{
			ItemType:   item.ItemType,
			ItemID:     item.ItemID,
			Delta:      -item.Quantity,
			StockAfter: stock,
			Reason:     domain.StockReasonOrderPlaced,
			OrderID:    &order.ID,
			CreatedBy:  &order.UserID,
		}); err != nil {
			return fmt.Errorf("inventory log: %w", err)
		}
	}

	reason := "Order placed"
	if err := u.orderRepo.CreateHistory(ctx, &domain.OrderHistory{
		OrderID:   order.ID,
		Field:     domain.HistoryFieldStatus,
		NewStatus: order.Status,
		Reason:    &reason,
		CreatedBy: &order.UserID,
	}); err != nil {
		return fmt.Errorf("order history: %w", err)
	}

	return u.cartRepo.Clear(ctx, cartID)
}

func isOrderNumberConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict) && strings.Contains(err.Error(), "order_number")
}

// --- Customer ---

func (u *OrderUsecase) GetMyOrders(ctx context.Context, userID string, page, limit int) ([]domain.Order, domain.Pagination, error) {
	return u.ListOrders(ctx, domain.OrderFilter{UserID: userID, Page: page, Limit: limit})
}

// GetMyOrder reports someone else's order as missing.
func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID, orderID, reason string) (*domain.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Cancelled by customer"
	}
	return u.changeStatus(ctx, orderID, domain.OrderStatusCancelled, reason, userID, userID)
}

// --- Admin ---

func (u *OrderUsecase) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, domain.Pagination, error) {
	req := domain.PageRequest{Page: f.Page, Limit: f.Limit}.Normalize(20, 100)
	f.Page, f.Limit = req.Page, req.Limit

	if f.Status != "" && !domain.IsValidOrderStatus(f.Status) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, f.Status)
	}
	if f.PaymentStatus != "" && !domain.IsValidPaymentStatus(f.PaymentStatus) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidInput, f.PaymentStatus)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.Pagination{}, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}

	orders, total, err := u.orderRepo.GetAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list orders: %w", err)
	}
	return orders, domain.NewPagination(f.Page, f.Limit, total), nil
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	if _, err := u.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.orderRepo.GetHistory(ctx, orderID)
}

func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, note, actorID string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, newStatus)
	}
	return u.changeStatus(ctx, orderID, newStatus, strings.TrimSpace(note), actorID, "")
}

// changeStatus moves an order along its lifecycle under a row lock. A non-empty ownerID
// restricts the change to that customer's orders.
func (u *OrderUsecase) changeStatus(ctx context.Context, orderID, newStatus, note, actorID, ownerID string) (*domain.Order, error) {
	var (
		order          *domain.Order
		paymentChanged bool
	)

	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		o, err := u.orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ownerID != "" && o.UserID != ownerID {
			return domain.ErrNotFound
		}
		if err := domain.ValidateOrderTransition(o.Status, newStatus); err != nil {
			return err
		}

		prev := o.Status
		var cancelReason *string
		if newStatus == domain.OrderStatusCancelled {
			cancelReason = &note
			if err := u.restock(ctx, o, actorID); err != nil {
				return err
			}
		}
		if err := u.orderRepo.UpdateStatus(ctx, o.ID, newStatus, cancelReason); err != nil {
			return err
		}

		reason := note
		if reason == "" {
			reason = fmt.Sprintf("Status changed from %s to %s", prev, newStatus)
		}
		if err := u.writeHistory(ctx, o.ID, domain.HistoryFieldStatus, prev, newStatus, reason, actorID); err != nil {
			return err
		}
		o.Status = newStatus
		if cancelReason != nil {
			o.CancelReason = cancelReason
		}

		switch {
		case newStatus == domain.OrderStatusCancelled && o.PaymentStatus == domain.PaymentStatusPaid:
			if err := u.setPayment(ctx, o, domain.PaymentStatusRefunded, "Refunded on cancellation", actorID); err != nil {
				return err
			}
			paymentChanged = true
		case newStatus == domain.OrderStatusDelivered &&
			o.PaymentMethod == domain.PaymentMethodCashOnDelivery &&
			o.PaymentStatus == domain.PaymentStatusPending:
			if err := u.setPayment(ctx, o, domain.PaymentStatusPaid, "Cash collected on delivery", actorID); err != nil {
				return err
			}
			paymentChanged = true
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if newStatus == domain.OrderStatusCancelled {
		u.invalidateAfterStockChange()
	} else {
		u.cache.DeletePrefix(keyDashboardPrefix)
	}

	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("status", order.Status).
		Str("payment_status", order.PaymentStatus).
		Msg("Order status changed")
	u.publish(ctx, domain.EventOrderStatusChanged, order)
	if paymentChanged {
		u.publish(ctx, domain.EventOrderPaymentChanged, order)
	}
	return order, nil
}

func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, orderID, newStatus, note, actorID string) (*domain.Order, error) {
	if !domain.IsValidPaymentStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidInput, newStatus)
	}

	var order *domain.Order
	err := u.txManager.Do(ctx, func(ctx context.Context) error {
		o, err := u.orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := domain.ValidatePaymentTransition(o.PaymentStatus, newStatus); err != nil {
			return err
		}
		if o.Status == domain.OrderStatusCancelled && newStatus == domain.PaymentStatusPaid {
			return fmt.Errorf("%w: order is cancelled", domain.ErrInvalidTransition)
		}

		reason := strings.TrimSpace(note)
		if reason == "" {
			reason = fmt.Sprintf("Payment status changed: %s -> %s", o.PaymentStatus, newStatus)
		}
		if err := u.setPayment(ctx, o, newStatus, reason, actorID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	u.cache.DeletePrefix(keyDashboardPrefix)
	logger.WithContext(ctx).Info().
		Str("order_id", order.ID).
		Str("payment_status", order.PaymentStatus).
		Msg("Payment status changed")
	u.publish(ctx, domain.EventOrderPaymentChanged, order)
	return order, nil
}

// setPayment must run inside a transaction.
func (u *OrderUsecase) setPayment(ctx context.Context, o *domain.Order, status, reason, actorID string) error {
	prev := o.PaymentStatus
	if err := u.orderRepo.UpdatePaymentStatus(ctx, o.ID, status); err != nil {
		return err
	}
	if err := u.writeHistory(ctx, o.ID, domain.HistoryFieldPayment, prev, status, reason, actorID); err != nil {
		return err
	}
	o.PaymentStatus = status
	return nil
}

func (u *OrderUsecase) restock(ctx context.Context, o *domain.Order, actorID string) error {
	for _, item := range o.Items {
		stock, err := u.catalogRepo.AdjustStock(ctx, item.ItemType, item.ItemID, item.Quantity)
		if err != nil {
			return fmt.Errorf("restock %s: %w", item.Name, err)
		}
		entry := &domain.InventoryLog{
			ItemType:   item.ItemType,
			ItemID:     item.ItemID,
			Delta:      item.Quantity,
			StockAfter: stock,
			Reason:     domain.StockReasonOrderCancelled,
			OrderID:    &o.ID,
		}
		if actorID != "" {
			entry.CreatedBy = &actorID
		}
		if err := u.catalogRepo.CreateInventoryLog(ctx, entry); err != nil {
			return fmt.Errorf("inventory log: %w", err)
		}
	}
	return nil
}

func (u *OrderUsecase) writeHistory(ctx context.Context, orderID, field, prev, next, reason, actorID string) error {
	h := &domain.OrderHistory{
		OrderID:        orderID,
		Field:          field,
		PreviousStatus: &prev,
		NewStatus:      next,
		Reason:         &reason,
	}
	if actorID != "" {
		h.CreatedBy = &actorID
	}
	return u.orderRepo.CreateHistory(ctx, h)
}

// publish is best effort: the order is already committed.
func (u *OrderUsecase) publish(ctx context.Context, eventType string, order *domain.Order) {
	if err := u.publisher.Publish(ctx, domain.NewOrderEvent(eventType, order)); err != nil {
		logger.WithContext(ctx).Error().Err(err).
			Str("event", eventType).
			Str("order_id", order.ID).
			Msg("Failed to publish order event")
	}
}

func (u *OrderUsecase) invalidateAfterStockChange() {
	u.cache.DeletePrefix(keyCarSlugPrefix)
	u.cache.DeletePrefix(keyPartSlugPrefix)
	u.cache.DeletePrefix(keyDashboardPrefix)
}
