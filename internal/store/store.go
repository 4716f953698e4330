// Package store provides durable key to JSON-document storage with
// defensive reads. It has no knowledge of commerce semantics; carts,
// wishlists and orders all route their state through it.
package store

import "context"

// Store defines the interface for key-value document persistence.
//
// Writes are last-writer-wins; there is no optimistic concurrency.
// A corrupt document must never propagate as an error: implementations
// log the corruption, remove the offending key and report the key as
// absent, so a broken convenience cache cannot crash the application.
type Store interface {
	// Load reads the document stored under key into out and reports
	// whether the key was present. An unparseable document is removed
	// and reported as absent.
	Load(ctx context.Context, key string, out any) (bool, error)

	// Save serializes value and writes it under key, overwriting any
	// existing document.
	Save(ctx context.Context, key string, value any) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Keys used by the commerce state components.
const (
	KeyCart      = "cart"
	KeySavedCart = "savedCart"
	KeyWishlist  = "wishlist"
	KeyOrders    = "orders"
)
