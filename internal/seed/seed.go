package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

// DefaultKey is the storage key demo data is written under.
const DefaultKey = "demo"

type cartSeeder interface {
	Clear(ctx context.Context, storageKey string) (cartsvc.View, error)
	AddItem(ctx context.Context, storageKey string, in cartsvc.AddInput) (cartsvc.View, error)
	MemoryOnly(storageKey string) bool
}

type wishlistSeeder interface {
	Clear(ctx context.Context, storageKey string) ([]domain.WishlistItem, error)
	Add(ctx context.Context, storageKey string, p domain.Product) (bool, []domain.WishlistItem, error)
	MemoryOnly(storageKey string) bool
}

type lineSeed struct {
	Product  domain.Product
	Quantity int
	Size     string
	Color    string
}

func catalog() (lines []lineSeed, saved []domain.Product) {
	stock := 12
	was := decimal.RequireFromString("39.99")
	tee := domain.Product{
		ID:            "demo-tee",
		Name:          "Demo T-Shirt",
		Brand:         "Storefront",
		Images:        []string{"https://cdn.example.com/demo-tee.jpg"},
		Price:         decimal.RequireFromString("19.99"),
		OriginalPrice: &was,
		Stock:         &stock,
	}
	mug := domain.Product{
		ID:     "demo-mug",
		Name:   "Demo Mug",
		Brand:  "Storefront",
		Images: []string{"https://cdn.example.com/demo-mug.jpg"},
		Price:  decimal.RequireFromString("12.99"),
	}
	jacket := domain.Product{
		ID:     "demo-jacket",
		Name:   "Demo Rain Jacket",
		Brand:  "Storefront",
		Images: []string{"https://cdn.example.com/demo-jacket.jpg"},
		Price:  decimal.RequireFromString("129.00"),
	}

	lines = []lineSeed{
		{Product: tee, Quantity: 2, Size: "M", Color: "black"},
		{Product: tee, Quantity: 1, Size: "L", Color: "white"},
		{Product: mug, Quantity: 1},
	}
	return lines, []domain.Product{jacket, mug}
}

// Apply replaces the cart and wishlist under storageKey with demo content,
// so running it twice leaves the same state.
func Apply(ctx context.Context, carts cartSeeder, wishlists wishlistSeeder, storageKey string) error {
	if storageKey == "" {
		storageKey = DefaultKey
	}
	lines, saved := catalog()

	if _, err := carts.Clear(ctx, storageKey); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	for _, l := range lines {
		qty := l.Quantity
		if _, err := carts.AddItem(ctx, storageKey, cartsvc.AddInput{
			Product:  l.Product,
			Quantity: &qty,
			Size:     l.Size,
			Color:    l.Color,
		}); err != nil {
			return fmt.Errorf("add %s: %w", l.Product.ID, err)
		}
	}
	if carts.MemoryOnly(storageKey) {
		return fmt.Errorf("cart %s: %w", storageKey, domain.ErrNotPersisted)
	}

	if _, err := wishlists.Clear(ctx, storageKey); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	for _, p := range saved {
		if _, _, err := wishlists.Add(ctx, storageKey, p); err != nil {
			return fmt.Errorf("save %s: %w", p.ID, err)
		}
	}
	if wishlists.MemoryOnly(storageKey) {
		return fmt.Errorf("wishlist %s: %w", storageKey, domain.ErrNotPersisted)
	}
	return nil
}
