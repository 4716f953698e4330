// Package wishlist implements the wishlist: a persisted set of
// products keyed by product ID, with toggle semantics on add.
package wishlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/model"
	"storefront/internal/store"

	"github.com/rs/zerolog"
)

// Wishlist maintains the wishlist state. A product appears at most
// once; there is no quantity.
type Wishlist struct {
	mu      sync.Mutex
	entries []model.WishlistEntry
	store   store.Store
	logger  zerolog.Logger
}

// New creates a wishlist backed by st and hydrates it from the
// persisted `wishlist` key.
func New(ctx context.Context, st store.Store, logger zerolog.Logger) (*Wishlist, error) {
	w := &Wishlist{
		store:  st,
		logger: logger.With().Str("component", "wishlist").Logger(),
	}

	found, err := st.Load(ctx, store.KeyWishlist, &w.entries)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate wishlist: %w", err)
	}

	w.logger.Info().
		Bool("hydrated", found).
		Int("entries", len(w.entries)).
		Msg("wishlist initialised")

	return w, nil
}

// Toggle inserts the product when absent and removes it when present.
// It reports whether the product is in the wishlist afterwards.
func (w *Wishlist) Toggle(ctx context.Context, product model.Product) (bool, error) {
	if err := product.Validate(); err != nil {
		w.logger.Warn().Str("product_id", product.ID).Msg("rejected invalid product")
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]model.WishlistEntry, 0, len(w.entries)+1)
	removed := false
	for _, e := range w.entries {
		if e.ID == product.ID {
			removed = true
			continue
		}
		next = append(next, e)
	}

	if !removed {
		next = append(next, model.WishlistEntry{
			Product: product,
			AddedAt: time.Now(),
		})
	}

	if err := w.store.Save(ctx, store.KeyWishlist, next); err != nil {
		return false, fmt.Errorf("failed to persist wishlist: %w", err)
	}
	w.entries = next

	w.logger.Debug().
		Str("product_id", product.ID).
		Bool("added", !removed).
		Msg("wishlist toggled")

	return !removed, nil
}

// Remove deletes the product from the wishlist. A silent no-op when
// absent.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]model.WishlistEntry, 0, len(w.entries))
	removed := false
	for _, e := range w.entries {
		if e.ID == productID {
			removed = true
			continue
		}
		next = append(next, e)
	}

	if !removed {
		return nil
	}

	if err := w.store.Save(ctx, store.KeyWishlist, next); err != nil {
		return fmt.Errorf("failed to persist wishlist: %w", err)
	}
	w.entries = next

	return nil
}

// Clear empties the wishlist.
func (w *Wishlist) Clear(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.store.Save(ctx, store.KeyWishlist, []model.WishlistEntry{}); err != nil {
		return fmt.Errorf("failed to persist wishlist: %w", err)
	}
	w.entries = nil

	w.logger.Debug().Msg("wishlist cleared")

	return nil
}

// Contains reports whether the product is in the wishlist.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.entries {
		if w.entries[i].ID == productID {
			return true
		}
	}
	return false
}

// Count returns the number of entries.
func (w *Wishlist) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Items returns a copy of the wishlist entries in insertion order.
func (w *Wishlist) Items() []model.WishlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make([]model.WishlistEntry, len(w.entries))
	copy(next, w.entries)
	return next
}
