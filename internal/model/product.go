package model

// Product represents a product reference sourced from the external catalogue.
// Products are read-only from this subsystem's point of view.
type Product struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Images   []string `json:"images,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Validate checks that the product carries the fields required before it
// can be stored in a cart or wishlist.
func (p *Product) Validate() error {
	if p == nil || p.ID == "" {
		return ErrInvalidProduct
	}
	if p.Price < 0 {
		return ErrInvalidProduct
	}
	return nil
}
