package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced         = "order.placed"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderPaymentChanged = "order.payment_changed"
)

type OrderEvent struct {
	Type          string          `json:"type"`
	OrderID       string          `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	UserID        string          `json:"userId"`
	Email         string          `json:"email"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Total         decimal.Decimal `json:"total"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func NewOrderEvent(eventType string, o *Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Email:         o.CustomerEmail,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		OccurredAt:    time.Now().UTC(),
	}
}

type OrderEventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}
