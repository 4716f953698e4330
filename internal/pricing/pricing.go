// Package pricing holds the fixed coupon table and the pure quote
// calculation used by the cart. It keeps no state of its own; the
// currently-applied coupon lives in cart state.
package pricing

import "strings"

// Table maps normalized coupon codes to their percentage discount.
// Percentages are fixed between 0 and 100 at construction, so a quote
// can never go negative by construction rather than by clamping.
type Table struct {
	coupons map[string]float64
}

// DefaultTable returns the storefront's built-in coupon table.
func DefaultTable() *Table {
	return NewTable(map[string]float64{
		"SAVE10":    10,
		"SAVE20":    20,
		"WELCOME15": 15,
		"FLASH25":   25,
		"FREESHIP":  0,
	})
}

// NewTable creates a coupon table from code to percentage mappings.
// Codes are normalized upper-case.
func NewTable(coupons map[string]float64) *Table {
	t := &Table{coupons: make(map[string]float64, len(coupons))}
	for code, percent := range coupons {
		t.coupons[strings.ToUpper(code)] = percent
	}
	return t
}

// Lookup resolves a coupon code case-insensitively. It returns the
// normalized code and its discount percentage.
func (t *Table) Lookup(code string) (string, float64, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	percent, ok := t.coupons[normalized]
	if !ok {
		return "", 0, false
	}
	return normalized, percent, true
}

// Size returns the number of coupons in the table.
func (t *Table) Size() int {
	return len(t.coupons)
}

// Config holds the shipping rule knobs.
type Config struct {
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold float64

	// FlatShippingFee is charged when the subtotal does not reach the
	// threshold.
	FlatShippingFee float64
}

// DefaultConfig returns the storefront's shipping defaults.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: 50,
		FlatShippingFee:       5.99,
	}
}

// Quote is the derived pricing for a cart snapshot.
type Quote struct {
	Subtotal   float64 `json:"subtotal"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
	Shipping   float64 `json:"shipping"`
	GrandTotal float64 `json:"grandTotal"`
}

// Compute derives a quote from a cart subtotal and an applied discount
// percentage. It is a pure function.
func Compute(subtotal, discountPercent float64, cfg Config) Quote {
	q := Quote{Subtotal: subtotal}

	if discountPercent > 0 {
		q.Discount = subtotal * discountPercent / 100
	}
	q.Total = q.Subtotal - q.Discount

	if subtotal > cfg.FreeShippingThreshold {
		q.Shipping = 0
	} else {
		q.Shipping = cfg.FlatShippingFee
	}
	q.GrandTotal = q.Total + q.Shipping

	return q
}
