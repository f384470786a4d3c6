package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cardealer-backend/internal/domain"
	"cardealer-backend/pkg/logger"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// EventHandler processes one order event. Returning an error requeues the delivery once.
type EventHandler func(ctx context.Context, event domain.OrderEvent) error

// Consumer runs a pool of workers, each with its own channel, over one connection.
type Consumer struct {
	conn     *amqp.Connection
	queue    string
	workers  int
	prefetch int
	handler  EventHandler
}

func NewConsumer(url, queue string, workers int, handler EventHandler) (*Consumer, error) {
	if workers < 1 {
		workers = 1
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return &Consumer{conn: conn, queue: queue, workers: workers, prefetch: 10, handler: handler}, nil
}

// Run blocks until ctx is cancelled or every worker has stopped.
func (c *Consumer) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := c.worker(ctx, id); err != nil {
				errs <- err
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		c.conn.Close()
		<-done
	case <-done:
		c.conn.Close()
	}
	close(errs)

	var all []error
	for err := range errs {
		all = append(all, err)
	}
	return errors.Join(all...)
}

func (c *Consumer) worker(ctx context.Context, id int) error {
	log := logger.Get().With().Int("worker", id).Logger()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: channel: %w", id, err)
	}
	defer ch.Close()

	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("worker %d: qos: %w", id, err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("worker %d: consume: %w", id, err)
	}

	log.Info().Msg("Worker consuming")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, d, &log)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, log *zerolog.Logger) {
	process(ctx, d.Body, d.Redelivered, &d, c.handler, log)
}

// process decodes and dispatches one delivery. Malformed bodies are dropped;
// handler failures are requeued once and then dropped.
func process(ctx context.Context, body []byte, redelivered bool, ack acknowledger, handler EventHandler, log *zerolog.Logger) {
	var event domain.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn().Err(err).Msg("Dropping malformed order event")
		_ = ack.Ack(false)
		return
	}

	if err := handler(ctx, event); err != nil {
		log.Error().Err(err).Str("event", event.Type).Str("order_number", event.OrderNumber).
			Bool("redelivered", redelivered).Msg("Order event handler failed")
		_ = ack.Nack(false, !redelivered)
		return
	}
	_ = ack.Ack(false)
}
