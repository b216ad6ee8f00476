package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wishlist is the set of products a shopper saved for later, in the order
// they were saved. Product IDs are unique.
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

type WishlistItem struct {
	ProductID     string           `json:"productId"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	AddedAt       time.Time        `json:"addedAt"`
}

// Clone returns a deep copy, including the OriginalPrice pointees.
func (w Wishlist) Clone() Wishlist {
	out := Wishlist{Items: make([]WishlistItem, len(w.Items))}
	for i, item := range w.Items {
		item.OriginalPrice = cloneDecimal(item.OriginalPrice)
		out.Items[i] = item
	}
	return out
}
