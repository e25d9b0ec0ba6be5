package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishByTableAndKey(t *testing.T) {
	h := NewHub()
	all := h.Subscribe("messages")
	defer all.Close()
	one := h.Subscribe(Topic("messages", "ride_r1_p1_d1"))
	defer one.Close()
	other := h.Subscribe(Topic("messages", "ride_r2_p1_d1"))
	defer other.Close()

	require.NoError(t, h.Notify(context.Background(), "messages", "ride_r1_p1_d1"))

	got := <-all.C
	assert.Equal(t, "messages", got.Table)
	assert.Equal(t, "ride_r1_p1_d1", got.Key)
	assert.False(t, got.At.IsZero())

	got = <-one.C
	assert.Equal(t, "ride_r1_p1_d1", got.Key)

	select {
	case c := <-other.C:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestSubscriberOnBothTopicsGetsOneSignal(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("rides", Topic("rides", "r1"))
	defer sub.Close()

	h.Publish(Change{Table: "rides", Key: "r1"})

	assert.Len(t, sub.C, 1)
}

func TestFullBufferDropsSignals(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("rides")
	defer sub.Close()

	for i := 0; i < bufferSize+5; i++ {
		h.Publish(Change{Table: "rides", Key: "r1"})
	}

	assert.Len(t, sub.C, bufferSize)
}

func TestCloseRemovesSubscriber(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("bookings")
	assert.Equal(t, 1, h.Subscribers("bookings"))

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, h.Subscribers("bookings"))
	_, open := <-sub.C
	assert.False(t, open)

	h.Publish(Change{Table: "bookings"})
}
