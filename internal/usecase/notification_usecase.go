package usecase

import (
	"context"
	"fmt"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"
)

// Notification is the customer-facing message derived from an order event.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers notifications. The default implementation logs them.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, n Notification) error {
	logger.WithContext(ctx).Info().
		Str("to", n.To).
		Str("subject", n.Subject).
		Msg(n.Body)
	return nil
}

type NotificationUsecase struct {
	notifier Notifier
}

func NewNotificationUsecase(notifier Notifier) *NotificationUsecase {
	return &NotificationUsecase{notifier: notifier}
}

// HandleOrderEvent is the notifier worker's message handler. Unknown event types are skipped.
func (uc *NotificationUsecase) HandleOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	n, ok := BuildNotification(event)
	if !ok {
		logger.WithContext(ctx).Debug().Str("event", event.Type).Msg("No notification for event")
		return nil
	}
	if n.To == "" {
		logger.WithContext(ctx).Warn().Str("order_id", event.OrderID).Msg("Order event without customer email")
		return nil
	}
	if err := uc.notifier.Send(ctx, n); err != nil {
		return fmt.Errorf("send notification for %s: %w", event.OrderNumber, err)
	}
	return nil
}

func BuildNotification(e domain.OrderEvent) (Notification, bool) {
	n := Notification{To: e.Email}
	switch e.Type {
	case domain.EventOrderPlaced:
		n.Subject = fmt.Sprintf("Order %s received", e.OrderNumber)
		n.Body = fmt.Sprintf("Thanks for your order %s. Total due: %s.", e.OrderNumber, e.Total.StringFixed(2))
	case domain.EventOrderStatusChanged:
		n.Subject = fmt.Sprintf("Order %s is now %s", e.OrderNumber, e.Status)
		n.Body = statusMessage(e)
	case domain.EventOrderPaymentChanged:
		n.Subject = fmt.Sprintf("Payment update for order %s", e.OrderNumber)
		n.Body = fmt.Sprintf("Payment for order %s is now %s.", e.OrderNumber, e.PaymentStatus)
	default:
		return Notification{}, false
	}
	return n, true
}

func statusMessage(e domain.OrderEvent) string {
	switch e.Status {
	case domain.OrderStatusConfirmed:
		return fmt.Sprintf("Order %s has been confirmed by our team.", e.OrderNumber)
	case domain.OrderStatusShipped:
		return fmt.Sprintf("Order %s is on its way.", e.OrderNumber)
	case domain.OrderStatusDelivered:
		return fmt.Sprintf("Order %s has been delivered. Enjoy the ride!", e.OrderNumber)
	case domain.OrderStatusCancelled:
		return fmt.Sprintf("Order %s has been cancelled.", e.OrderNumber)
	}
	return fmt.Sprintf("Order %s status: %s.", e.OrderNumber, e.Status)
}
