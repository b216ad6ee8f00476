package domain

import "github.com/shopspring/decimal"

// Variant is the size/color selection a shopper made for a product.
// Empty strings mean no selection.
type Variant struct {
	Size  string `json:"selectedSize,omitempty"`
	Color string `json:"selectedColor,omitempty"`
}

// LineKey is the natural key of a line item. Two additions with an equal
// LineKey merge into one line item.
type LineKey struct {
	ProductID string
	Variant   Variant
}

// Cart is the aggregate root holding the line items a shopper selected.
type Cart struct {
	Items  []LineItem `json:"items"`
	IsOpen bool       `json:"isOpen"`
}

// LineItem is one product + variant + quantity row. Display fields are
// copied from the product when it is first added and never refreshed.
type LineItem struct {
	ProductID     string           `json:"productId"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Quantity      int              `json:"quantity"`
	Stock         *int             `json:"stock,omitempty"`
	Variant
}

// Key returns the identity triple of the line item.
func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Variant: l.Variant}
}

// Total is UnitPrice × Quantity.
func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Clone returns a deep copy of the cart so callers cannot alias its items
// or the values behind their pointer fields.
func (c Cart) Clone() Cart {
	out := Cart{IsOpen: c.IsOpen, Items: make([]LineItem, len(c.Items))}
	for i, item := range c.Items {
		item.OriginalPrice = cloneDecimal(item.OriginalPrice)
		if item.Stock != nil {
			stock := *item.Stock
			item.Stock = &stock
		}
		out.Items[i] = item
	}
	return out
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
