package messaging

import (
	"context"
	"errors"
	"io"
	"testing"

	"cardealer-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func TestProcess(t *testing.T) {
	log := zerolog.New(io.Discard)
	body, err := json.Marshal(domain.OrderEvent{Type: domain.EventOrderPlaced, OrderNumber: "CD-20260101-AAAAAA"})
	require.NoError(t, err)

	t.Run("handled events are acked", func(t *testing.T) {
		var got domain.OrderEvent
		ack := &fakeAck{}
		process(context.Background(), body, false, ack, func(_ context.Context, e domain.OrderEvent) error {
			got = e
			return nil
		}, &log)

		assert.True(t, ack.acked)
		assert.Equal(t, "CD-20260101-AAAAAA", got.OrderNumber)
	})

	t.Run("malformed bodies are dropped", func(t *testing.T) {
		ack := &fakeAck{}
		called := false
		process(context.Background(), []byte("{"), false, ack, func(context.Context, domain.OrderEvent) error {
			called = true
			return nil
		}, &log)

		assert.True(t, ack.acked)
		assert.False(t, called)
	})

	t.Run("failures requeue once", func(t *testing.T) {
		fail := func(context.Context, domain.OrderEvent) error { return errors.New("smtp down") }

		ack := &fakeAck{}
		process(context.Background(), body, false, ack, fail, &log)
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)

		ack = &fakeAck{}
		process(context.Background(), body, true, ack, fail, &log)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}

func TestLogPublisher(t *testing.T) {
	var p domain.OrderEventPublisher = NewLogPublisher()
	assert.NoError(t, p.Publish(context.Background(), domain.OrderEvent{Type: domain.EventOrderPlaced}))
	assert.NoError(t, p.Close())
}
