package messaging

import (
	"context"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"
)

// LogPublisher stands in for RabbitMQ when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	logger.WithContext(ctx).Debug().
		Str("event", event.Type).
		Str("order_number", event.OrderNumber).
		Str("status", event.Status).
		Msg("Order event (no broker configured)")
	return nil
}

func (LogPublisher) Close() error { return nil }
