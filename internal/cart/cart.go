// Package cart implements the shopping cart: an ordered collection of
// line items with merge-by-identity semantics, an applied coupon, and
// derived pricing. Every mutation persists the full collection before
// it becomes visible.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/store"

	"github.com/rs/zerolog"
)

// Cart maintains the shopping cart state. It is safe for concurrent
// use, though the expected caller is a single UI loop.
type Cart struct {
	mu         sync.Mutex
	items      []model.CartItem
	couponCode string
	discount   float64

	table    *pricing.Table
	shipping pricing.Config
	store    store.Store
	logger   zerolog.Logger
}

// New creates a cart backed by st and hydrates it from the persisted
// `cart` key. A corrupt persisted document resets to an empty cart.
func New(ctx context.Context, st store.Store, table *pricing.Table, shipping pricing.Config, logger zerolog.Logger) (*Cart, error) {
	c := &Cart{
		table:    table,
		shipping: shipping,
		store:    st,
		logger:   logger.With().Str("component", "cart").Logger(),
	}

	found, err := st.Load(ctx, store.KeyCart, &c.items)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate cart: %w", err)
	}

	c.logger.Info().
		Bool("hydrated", found).
		Int("items", len(c.items)).
		Msg("cart initialised")

	return c, nil
}

// Add merges product into the cart. An addition with an identity key
// already present sums quantities into the existing line; otherwise a
// new line is appended. It reports whether an existing line was merged
// into. Quantities below one are treated as one.
func (c *Cart) Add(ctx context.Context, product model.Product, quantity int, options map[string]string) (bool, error) {
	if err := product.Validate(); err != nil {
		c.logger.Warn().Str("product_id", product.ID).Msg("rejected invalid product")
		return false, err
	}
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := model.ItemIdentityKey(product.ID, options)
	next := cloneItems(c.items)

	merged := false
	for i := range next {
		if next[i].IdentityKey() == key {
			next[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		next = append(next, model.CartItem{
			Product:         product,
			Quantity:        quantity,
			SelectedOptions: options,
			AddedAt:         time.Now(),
		})
	}

	if err := c.store.Save(ctx, store.KeyCart, next); err != nil {
		return false, fmt.Errorf("failed to persist cart: %w", err)
	}
	c.items = next

	c.logger.Debug().
		Str("product_id", product.ID).
		Int("quantity", quantity).
		Bool("merged", merged).
		Msg("item added to cart")

	return merged, nil
}

// Remove deletes lines for a product. With nil options every line for
// the product ID is removed; with options only the exact identity is.
// Removing an absent product is a silent no-op.
func (c *Cart) Remove(ctx context.Context, productID string, options map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches := func(item *model.CartItem) bool {
		if options == nil {
			return item.ID == productID
		}
		return item.IdentityKey() == model.ItemIdentityKey(productID, options)
	}

	next := make([]model.CartItem, 0, len(c.items))
	removed := false
	for _, item := range c.items {
		if matches(&item) {
			removed = true
			continue
		}
		next = append(next, item)
	}

	if !removed {
		return nil
	}

	if err := c.store.Save(ctx, store.KeyCart, next); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	c.items = next

	c.logger.Debug().Str("product_id", productID).Msg("item removed from cart")

	return nil
}

// UpdateQuantity sets the quantity on every line for the product. A
// quantity below one removes those lines instead. Targeting an absent
// product is a silent no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return c.Remove(ctx, productID, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneItems(c.items)
	changed := false
	for i := range next {
		if next[i].ID == productID {
			next[i].Quantity = quantity
			changed = true
		}
	}

	if !changed {
		return nil
	}

	if err := c.store.Save(ctx, store.KeyCart, next); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	c.items = next

	return nil
}

// Clear empties the cart and drops any applied coupon.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(ctx, store.KeyCart, []model.CartItem{}); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	c.items = nil
	c.couponCode = ""
	c.discount = 0

	c.logger.Debug().Msg("cart cleared")

	return nil
}

// MergeDuplicates collapses lines sharing an identity key by summing
// their quantities into the first occurrence. It is a consistency
// repair for corrupted persisted state and reports whether anything
// was merged. Applying it twice is equivalent to applying it once.
func (c *Cart) MergeDuplicates(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]int, len(c.items))
	next := make([]model.CartItem, 0, len(c.items))
	for _, item := range c.items {
		key := item.IdentityKey()
		if i, ok := seen[key]; ok {
			next[i].Quantity += item.Quantity
			continue
		}
		seen[key] = len(next)
		next = append(next, item)
	}

	if len(next) == len(c.items) {
		return false, nil
	}

	if err := c.store.Save(ctx, store.KeyCart, next); err != nil {
		return false, fmt.Errorf("failed to persist cart: %w", err)
	}
	c.items = next

	c.logger.Info().Int("items", len(next)).Msg("duplicate cart lines merged")

	return true, nil
}

// SaveForLater copies the live cart into the secondary `savedCart`
// slot. The live cart is unaffected.
func (c *Cart) SaveForLater(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(ctx, store.KeySavedCart, c.items); err != nil {
		return fmt.Errorf("failed to save cart for later: %w", err)
	}
	return nil
}

// RestoreSaved replaces the live cart with the contents of the
// `savedCart` slot. It reports false, without touching the cart, when
// no saved cart exists.
func (c *Cart) RestoreSaved(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var saved []model.CartItem
	found, err := c.store.Load(ctx, store.KeySavedCart, &saved)
	if err != nil {
		return false, fmt.Errorf("failed to load saved cart: %w", err)
	}
	if !found {
		return false, nil
	}

	if err := c.store.Save(ctx, store.KeyCart, saved); err != nil {
		return false, fmt.Errorf("failed to persist cart: %w", err)
	}
	c.items = saved

	c.logger.Info().Int("items", len(saved)).Msg("saved cart restored")

	return true, nil
}

// ApplyCoupon resolves code against the coupon table. On a hit the
// code and percentage are recorded and true is returned; on a miss the
// previously applied coupon is left untouched and false is returned.
func (c *Cart) ApplyCoupon(code string) bool {
	normalized, percent, ok := c.table.Lookup(code)
	if !ok {
		c.logger.Debug().Str("code", code).Msg("invalid coupon code")
		return false
	}

	c.mu.Lock()
	c.couponCode = normalized
	c.discount = percent
	c.mu.Unlock()

	c.logger.Info().Str("code", normalized).Float64("percent", percent).Msg("coupon applied")

	return true
}

// RemoveCoupon clears the applied coupon unconditionally.
func (c *Cart) RemoveCoupon() {
	c.mu.Lock()
	c.couponCode = ""
	c.discount = 0
	c.mu.Unlock()
}

// Coupon returns the currently applied coupon code and percentage.
func (c *Cart) Coupon() (string, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.couponCode, c.discount
}

// Quote derives the current pricing from the cart subtotal and the
// applied discount.
func (c *Cart) Quote() pricing.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pricing.Compute(c.subtotalLocked(), c.discount, c.shipping)
}

// Contains reports whether any line holds the product.
func (c *Cart) Contains(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == productID {
			return true
		}
	}
	return false
}

// QuantityOf returns the quantity on the first line holding the
// product, or zero when absent.
func (c *Cart) QuantityOf(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == productID {
			return c.items[i].Quantity
		}
	}
	return 0
}

// Count returns the summed quantity across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for i := range c.items {
		count += c.items[i].Quantity
	}
	return count
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Subtotal returns the sum of price times quantity across all lines.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

func (c *Cart) subtotalLocked() float64 {
	sum := 0.0
	for i := range c.items {
		sum += c.items[i].Price * float64(c.items[i].Quantity)
	}
	return sum
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

func cloneItems(items []model.CartItem) []model.CartItem {
	next := make([]model.CartItem, len(items))
	copy(next, items)
	return next
}
