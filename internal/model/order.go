package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order lifecycle states. Pending is the initial state; completed and
// cancelled are terminal in practice, but transitions are not restricted
// so an order can be reverted by an explicit admin action.
const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a line item copied into an order at placement time. It is
// a snapshot: later catalogue price changes do not affect it.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Order represents a placed customer order.
type Order struct {
	ID        string      `json:"id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	Status    OrderStatus `json:"status"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
}
