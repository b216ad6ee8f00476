package httpserver

import (
	"time"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

// Money is rendered with two decimal places; the stored values keep full
// precision.
const moneyPlaces = 2

type cartResponse struct {
	StorageKey string             `json:"storageKey"`
	Items      []lineItemResponse `json:"items"`
	IsOpen     bool               `json:"isOpen"`
	Totals     totalsResponse     `json:"totals"`
	Notices    []domain.Notice    `json:"notices"`
}

type lineItemResponse struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	UnitPrice     string  `json:"unitPrice"`
	OriginalPrice *string `json:"originalPrice,omitempty"`
	Quantity      int     `json:"quantity"`
	SelectedSize  *string `json:"selectedSize"`
	SelectedColor *string `json:"selectedColor"`
	Stock         *int    `json:"stock,omitempty"`
	LineTotal     string  `json:"lineTotal"`
}

type totalsResponse struct {
	ItemCount  int    `json:"itemCount"`
	Subtotal   string `json:"subtotal"`
	Tax        string `json:"tax"`
	Shipping   string `json:"shipping"`
	GrandTotal string `json:"grandTotal"`
}

type checkoutResponse struct {
	StorageKey string             `json:"storageKey"`
	Items      []lineItemResponse `json:"items"`
	Totals     totalsResponse     `json:"totals"`
	PreparedAt time.Time          `json:"preparedAt"`
}

type wishlistResponse struct {
	StorageKey string                 `json:"storageKey"`
	Items      []wishlistItemResponse `json:"items"`
	Notices    []domain.Notice        `json:"notices"`
}

type wishlistItemResponse struct {
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Price         string    `json:"price"`
	OriginalPrice *string   `json:"originalPrice,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}

func toCartResponse(key string, view cartsvc.View, notices []domain.Notice) cartResponse {
	return cartResponse{
		StorageKey: key,
		Items:      toLineItems(view.Cart.Items),
		IsOpen:     view.Cart.IsOpen,
		Totals:     toTotals(view.Totals),
		Notices:    notices,
	}
}

func toLineItems(items []domain.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemResponse{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Brand:         item.Brand,
			ImageURL:      item.ImageURL,
			UnitPrice:     money(item.UnitPrice),
			OriginalPrice: optionalMoney(item.OriginalPrice),
			Quantity:      item.Quantity,
			SelectedSize:  optionalString(item.Size),
			SelectedColor: optionalString(item.Color),
			Stock:         item.Stock,
			LineTotal:     money(item.Total()),
		})
	}
	return out
}

func toTotals(t cartsvc.Totals) totalsResponse {
	return totalsResponse{
		ItemCount:  t.ItemCount,
		Subtotal:   money(t.Subtotal),
		Tax:        money(t.Tax),
		Shipping:   money(t.Shipping),
		GrandTotal: money(t.GrandTotal),
	}
}

func toWishlistResponse(key string, items []domain.WishlistItem, notices []domain.Notice) wishlistResponse {
	out := make([]wishlistItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, wishlistItemResponse{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Brand:         item.Brand,
			ImageURL:      item.ImageURL,
			Price:         money(item.Price),
			OriginalPrice: optionalMoney(item.OriginalPrice),
			AddedAt:       item.AddedAt,
		})
	}
	return wishlistResponse{StorageKey: key, Items: out, Notices: notices}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

// optionalString renders an unselected variant as JSON null.
func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
