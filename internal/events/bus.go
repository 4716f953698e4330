package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous in-process publish/subscribe channel. Publishing
// is fire-and-forget from the publisher's point of view: handlers run
// before Publish returns, in subscription order, but publishers never
// depend on handler results.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]subscription
	nextID int
	logger zerolog.Logger
}

// NewBus creates an empty event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger.With().Str("component", "event-bus").Logger(),
	}
}

// Subscribe registers a handler for a topic and returns a function that
// removes the subscription. Handlers for one topic are invoked in the
// order they subscribed.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers payload to every handler subscribed to topic. The
// handler list is snapshotted first, so handlers may subscribe or
// unsubscribe while a publish is in flight.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.Unlock()

	b.logger.Debug().
		Str("topic", topic).
		Int("subscribers", len(subs)).
		Msg("publishing event")

	for _, s := range subs {
		s.handler(payload)
	}
}
