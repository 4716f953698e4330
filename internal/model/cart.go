package model

import (
	"sort"
	"strings"
	"time"
)

// CartItem represents a single line in the shopping cart. Two lines with
// the same product ID but different selected options are distinct entries.
type CartItem struct {
	Product
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	AddedAt         time.Time         `json:"addedAt"`
}

// IdentityKey returns the key that decides whether two cart lines
// represent the same item: the product ID plus the canonicalized
// selected options. Option order never affects the key.
func (i *CartItem) IdentityKey() string {
	return ItemIdentityKey(i.ID, i.SelectedOptions)
}

// ItemIdentityKey builds the cart identity key for a product ID and an
// option set.
func ItemIdentityKey(productID string, options map[string]string) string {
	if len(options) == 0 {
		return productID
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(productID)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(options[k])
	}
	return b.String()
}

// WishlistEntry represents a product saved to the wishlist. Wishlists
// have set semantics keyed by product ID, so there is no quantity.
type WishlistEntry struct {
	Product
	AddedAt time.Time `json:"addedAt"`
}
