// Package events provides the in-process publish/subscribe channel that
// keeps independent surfaces (storefront, admin dashboard) synchronized
// without shared in-memory state.
package events

import "storefront/internal/model"

// Topics published by the order lifecycle manager.
const (
	TopicOrderPlaced   = "orderPlaced"
	TopicOrderUpdated  = "orderUpdated"
	TopicOrderDeleted  = "orderDeleted"
	TopicOrdersCleared = "ordersCleared"
)

// OrderPlaced is published after an order has been persisted.
type OrderPlaced struct {
	Order model.Order `json:"order"`
}

// OrderUpdated is published after an order's status changed.
type OrderUpdated struct {
	OrderID string            `json:"orderId"`
	Status  model.OrderStatus `json:"status"`
}

// OrderDeleted is published after a single order was removed.
type OrderDeleted struct {
	OrderID string `json:"orderId"`
}

// OrdersCleared is published after the whole order list was emptied.
type OrdersCleared struct{}
