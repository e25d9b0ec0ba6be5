package consumer

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-ride/internal/shared/realtime"
	"campus-ride/internal/shared/util"
)

type ackRecorder struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

func TestHandleForwardsToHub(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe(realtime.Topic("bookings", "b1"))
	defer sub.Close()

	c := NewChangeConsumer(nil, hub, "campus_changes", util.NewNop())
	ack := &ackRecorder{}
	c.handle(amqp.Delivery{Acknowledger: ack, Body: []byte(`{"table":"bookings","key":"b1","at":"2026-03-14T12:00:00Z"}`)})

	require.Len(t, sub.C, 1)
	got := <-sub.C
	assert.Equal(t, "b1", got.Key)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestHandleDropsMalformed(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe("bookings")
	defer sub.Close()

	c := NewChangeConsumer(nil, hub, "campus_changes", util.NewNop())
	ack := &ackRecorder{}
	c.handle(amqp.Delivery{Acknowledger: ack, Body: []byte(`{oops`)})

	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Empty(t, sub.C)
}
