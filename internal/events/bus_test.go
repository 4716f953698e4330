package events

import (
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var got []any
	bus.Subscribe(TopicOrderPlaced, func(payload any) {
		got = append(got, payload)
	})

	payload := OrderPlaced{Order: model.Order{ID: "ORD-1"}}
	bus.Publish(TopicOrderPlaced, payload)

	require.Len(t, got, 1)
	assert.Equal(t, payload, got[0])
}

func TestBus_DeliveryInSubscriptionOrder(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var order []string
	bus.Subscribe(TopicOrderUpdated, func(any) { order = append(order, "first") })
	bus.Subscribe(TopicOrderUpdated, func(any) { order = append(order, "second") })
	bus.Subscribe(TopicOrderUpdated, func(any) { order = append(order, "third") })

	bus.Publish(TopicOrderUpdated, OrderUpdated{OrderID: "ORD-1", Status: model.StatusCompleted})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_PublishIsSynchronous(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	delivered := false
	bus.Subscribe(TopicOrdersCleared, func(any) { delivered = true })

	bus.Publish(TopicOrdersCleared, OrdersCleared{})

	// Handlers run before Publish returns.
	assert.True(t, delivered)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	calls := 0
	unsubscribe := bus.Subscribe(TopicOrderDeleted, func(any) { calls++ })
	stays := 0
	bus.Subscribe(TopicOrderDeleted, func(any) { stays++ })

	bus.Publish(TopicOrderDeleted, OrderDeleted{OrderID: "ORD-1"})
	unsubscribe()
	bus.Publish(TopicOrderDeleted, OrderDeleted{OrderID: "ORD-2"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, stays)

	// Unsubscribing twice is harmless.
	unsubscribe()
	bus.Publish(TopicOrderDeleted, OrderDeleted{OrderID: "ORD-3"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, stays)
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	placed := 0
	deleted := 0
	bus.Subscribe(TopicOrderPlaced, func(any) { placed++ })
	bus.Subscribe(TopicOrderDeleted, func(any) { deleted++ })

	bus.Publish(TopicOrderPlaced, OrderPlaced{})

	assert.Equal(t, 1, placed)
	assert.Equal(t, 0, deleted)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	// Fire-and-forget: publishing into the void must not panic.
	assert.NotPanics(t, func() {
		bus.Publish(TopicOrderPlaced, OrderPlaced{})
	})
}

func TestBus_SubscribeDuringPublish(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	late := 0
	bus.Subscribe(TopicOrderPlaced, func(any) {
		bus.Subscribe(TopicOrderPlaced, func(any) { late++ })
	})

	bus.Publish(TopicOrderPlaced, OrderPlaced{})
	assert.Equal(t, 0, late, "handlers added mid-publish only see later events")

	bus.Publish(TopicOrderPlaced, OrderPlaced{})
	assert.Equal(t, 1, late)
}
