package domain

import "github.com/shopspring/decimal"

// Product is the product snapshot surfaces hand over when a shopper adds
// something to the cart or wishlist. Only ID and Price are required.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img != "" {
			return img
		}
	}
	return ""
}
