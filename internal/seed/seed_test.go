package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/repository/storage"
	wishlistrepo "storefront/internal/repository/wishlist"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/notify"
	wishlistsvc "storefront/internal/service/wishlist"
)

func TestApply_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	carts := cartsvc.New(cartrepo.New(store), notify.Nop{}, cartsvc.DefaultPricing(), nil)
	wishlists := wishlistsvc.New(wishlistrepo.New(store), notify.Nop{}, carts, nil)

	require.NoError(t, Apply(ctx, carts, wishlists, ""))
	require.NoError(t, Apply(ctx, carts, wishlists, ""))

	view, err := carts.Get(ctx, DefaultKey)
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 3)
	require.Equal(t, 4, view.Totals.ItemCount)
	require.Equal(t, "72.96", view.Totals.Subtotal.StringFixed(2))

	items, err := wishlists.List(ctx, DefaultKey)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

// readOnlyStorage rejects writes under one namespace prefix.
type readOnlyStorage struct {
	storage.Store
	prefix string
}

func (r readOnlyStorage) Put(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, r.prefix) {
		return errors.New("read-only")
	}
	return r.Store.Put(ctx, key, value)
}

func TestApply_FailsWhenCartNotSaved(t *testing.T) {
	ctx := context.Background()
	store := readOnlyStorage{Store: storage.NewMemory(), prefix: cartrepo.Namespace}
	carts := cartsvc.New(cartrepo.New(store), notify.Nop{}, cartsvc.DefaultPricing(), nil)
	wishlists := wishlistsvc.New(wishlistrepo.New(store), notify.Nop{}, carts, nil)

	err := Apply(ctx, carts, wishlists, "")
	require.ErrorIs(t, err, domain.ErrNotPersisted)
	require.Contains(t, err.Error(), "cart")
}

func TestApply_FailsWhenWishlistNotSaved(t *testing.T) {
	ctx := context.Background()
	store := readOnlyStorage{Store: storage.NewMemory(), prefix: wishlistrepo.Namespace}
	carts := cartsvc.New(cartrepo.New(store), notify.Nop{}, cartsvc.DefaultPricing(), nil)
	wishlists := wishlistsvc.New(wishlistrepo.New(store), notify.Nop{}, carts, nil)

	err := Apply(ctx, carts, wishlists, "")
	require.ErrorIs(t, err, domain.ErrNotPersisted)
	require.Contains(t, err.Error(), "wishlist")
}
