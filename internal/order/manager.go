// Package order implements the order lifecycle: placement from a cart
// snapshot, status transitions, deletion and listing. Every mutation
// persists the full order list and publishes an event on the bus.
package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager owns the persisted order list and its state machine. An
// order starts pending and moves to completed or cancelled on explicit
// user action; transitions are not restricted, so an order can be
// reverted.
type Manager struct {
	mu     sync.Mutex
	orders []model.Order

	store  store.Store
	bus    *events.Bus
	logger zerolog.Logger
}

// NewManager creates an order manager backed by st and hydrates it
// from the persisted `orders` key.
func NewManager(ctx context.Context, st store.Store, bus *events.Bus, logger zerolog.Logger) (*Manager, error) {
	m := &Manager{
		store:  st,
		bus:    bus,
		logger: logger.With().Str("component", "orders").Logger(),
	}

	found, err := st.Load(ctx, store.KeyOrders, &m.orders)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate orders: %w", err)
	}

	m.logger.Info().
		Bool("hydrated", found).
		Int("orders", len(m.orders)).
		Msg("order manager initialised")

	return m, nil
}

// newOrderID generates a unique, time-prefixed order ID, so IDs from
// the same store sort by placement time.
func newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.New().String()[:8])
}

// Place creates a pending order from a cart snapshot. Line items are
// copied, so later cart or catalogue changes do not affect the order.
// The cart itself is untouched; clearing it after a successful
// placement is the caller's responsibility.
func (m *Manager) Place(ctx context.Context, items []model.CartItem, total float64) (*model.Order, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	now := time.Now()
	order := model.Order{
		ID:        newOrderID(now),
		Items:     make([]model.OrderItem, len(items)),
		Total:     total,
		CreatedAt: now,
		Status:    model.StatusPending,
	}

	for i, item := range items {
		image := ""
		if len(item.Images) > 0 {
			image = item.Images[0]
		}
		order.Items[i] = model.OrderItem{
			ProductID: item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     image,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := append(cloneOrders(m.orders), order)
	if err := m.store.Save(ctx, store.KeyOrders, next); err != nil {
		return nil, fmt.Errorf("failed to persist orders: %w", err)
	}
	m.orders = next

	m.logger.Info().
		Str("order_id", order.ID).
		Int("items", len(order.Items)).
		Float64("total", order.Total).
		Msg("order placed")

	m.bus.Publish(events.TopicOrderPlaced, events.OrderPlaced{Order: order})

	return &order, nil
}

// UpdateStatus rewrites the order's status and stamps updatedAt. An
// unknown status value is rejected; a missing order ID is a silent
// no-op, since this subsystem has no authority to assert an order
// should exist.
func (m *Manager) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	if !status.Valid() {
		return model.ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := cloneOrders(m.orders)
	found := false
	for i := range next {
		if next[i].ID == orderID {
			now := time.Now()
			next[i].Status = status
			next[i].UpdatedAt = &now
			found = true
			break
		}
	}

	if !found {
		m.logger.Debug().Str("order_id", orderID).Msg("order not found, ignoring status update")
		return nil
	}

	if err := m.store.Save(ctx, store.KeyOrders, next); err != nil {
		return fmt.Errorf("failed to persist orders: %w", err)
	}
	m.orders = next

	m.logger.Info().
		Str("order_id", orderID).
		Str("status", string(status)).
		Msg("order status updated")

	m.bus.Publish(events.TopicOrderUpdated, events.OrderUpdated{OrderID: orderID, Status: status})

	return nil
}

// Delete removes a single order. A missing order ID is a silent no-op.
func (m *Manager) Delete(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]model.Order, 0, len(m.orders))
	removed := false
	for _, o := range m.orders {
		if o.ID == orderID {
			removed = true
			continue
		}
		next = append(next, o)
	}

	if !removed {
		m.logger.Debug().Str("order_id", orderID).Msg("order not found, ignoring delete")
		return nil
	}

	if err := m.store.Save(ctx, store.KeyOrders, next); err != nil {
		return fmt.Errorf("failed to persist orders: %w", err)
	}
	m.orders = next

	m.logger.Info().Str("order_id", orderID).Msg("order deleted")

	m.bus.Publish(events.TopicOrderDeleted, events.OrderDeleted{OrderID: orderID})

	return nil
}

// DeleteAll empties the order list.
func (m *Manager) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Save(ctx, store.KeyOrders, []model.Order{}); err != nil {
		return fmt.Errorf("failed to persist orders: %w", err)
	}
	m.orders = nil

	m.logger.Info().Msg("all orders deleted")

	m.bus.Publish(events.TopicOrdersCleared, events.OrdersCleared{})

	return nil
}

// Get returns the order with the given ID, or nil when absent.
func (m *Manager) Get(orderID string) *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == orderID {
			o := m.orders[i]
			return &o
		}
	}
	return nil
}

// List returns all orders sorted by creation time, most recent first.
func (m *Manager) List() []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := cloneOrders(m.orders)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})
	return next
}

// Len returns the number of persisted orders.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func cloneOrders(orders []model.Order) []model.Order {
	next := make([]model.Order, len(orders))
	copy(next, orders)
	return next
}
