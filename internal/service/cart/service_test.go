package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/repository/storage"
	"storefront/internal/service/notify"
)

func intPtr(v int) *int {
	return &v
}

func newTestService() *Service {
	return New(cartrepo.New(storage.NewMemory()), notify.Nop{}, DefaultPricing(), nil)
}

func TestService_RequiresStorageKey(t *testing.T) {
	svc := newTestService()
	_, err := svc.Get(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrStorageKeyRequired)
}

func TestService_AddDefaultsQuantityToOne(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	view, err := svc.AddItem(ctx, "k", AddInput{Product: product("A", "5")})
	require.NoError(t, err)
	require.Equal(t, 1, view.Cart.Items[0].Quantity)

	_, err = svc.AddItem(ctx, "k", AddInput{Product: product("A", "5"), Quantity: intPtr(0)})
	require.ErrorIs(t, err, domain.ErrInvalidLineItem)
}

func TestService_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.AddItem(ctx, "alice", AddInput{Product: product("A", "5"), Quantity: intPtr(2)})
	require.NoError(t, err)

	view, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, view.Cart.Items)

	alice, err := svc.Store(ctx, "alice")
	require.NoError(t, err)
	again, err := svc.Store(ctx, "alice")
	require.NoError(t, err)
	require.Same(t, alice, again)
}

func TestService_LineOperations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.AddItem(ctx, "k", AddInput{Product: product("A", "50"), Size: "9", Color: "black"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "k", AddInput{Product: product("B", "60"), Quantity: intPtr(2)})
	require.NoError(t, err)

	view, err := svc.UpdateQuantity(ctx, "k", LineInput{ProductID: "A", Size: "9", Color: "black"}, 3)
	require.NoError(t, err)
	require.Equal(t, 5, view.Totals.ItemCount)
	requireDecimal(t, "270", view.Totals.Subtotal)

	view, err = svc.RemoveItem(ctx, "k", LineInput{ProductID: "B"})
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)

	view, err = svc.Toggle(ctx, "k")
	require.NoError(t, err)
	require.True(t, view.Cart.IsOpen)
	view, err = svc.Close(ctx, "k")
	require.NoError(t, err)
	require.False(t, view.Cart.IsOpen)
	view, err = svc.Open(ctx, "k")
	require.NoError(t, err)
	require.True(t, view.Cart.IsOpen)

	view, err = svc.Clear(ctx, "k")
	require.NoError(t, err)
	require.Empty(t, view.Cart.Items)
	requireDecimal(t, "10", view.Totals.GrandTotal)
}

func TestService_CheckoutDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.AddItem(ctx, "k", AddInput{Product: product("A", "50"), Quantity: intPtr(3)})
	require.NoError(t, err)

	handoff, err := svc.Checkout(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "k", handoff.StorageKey)
	require.Len(t, handoff.Items, 1)
	requireDecimal(t, "165", handoff.Totals.GrandTotal)

	handoff.Items[0].Quantity = 99
	view, err := svc.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 3, view.Cart.Items[0].Quantity)
}

func TestService_ConcurrentAddsSerialize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddItem(ctx, "shared", AddInput{Product: product("A", "1")}); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	view, err := svc.Get(ctx, "shared")
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)
	require.Equal(t, 50, view.Cart.Items[0].Quantity)
}

func TestService_ReloadsFromSharedStorage(t *testing.T) {
	ctx := context.Background()
	repo := cartrepo.New(storage.NewMemory())
	first := New(repo, nil, DefaultPricing(), nil)
	_, err := first.AddItem(ctx, "k", AddInput{Product: product("A", "2"), Quantity: intPtr(4)})
	require.NoError(t, err)

	second := New(repo, nil, DefaultPricing(), nil)
	view, err := second.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)
	require.Equal(t, 4, view.Cart.Items[0].Quantity)
}

// flakyStorage fails the next failGets reads and then delegates.
type flakyStorage struct {
	storage.Store
	failGets int
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGets > 0 {
		f.failGets--
		return nil, errors.New("connection reset")
	}
	return f.Store.Get(ctx, key)
}

func TestService_LoadFailureKeepsStoredCart(t *testing.T) {
	ctx := context.Background()
	backing := storage.NewMemory()
	writer := New(cartrepo.New(backing), nil, DefaultPricing(), nil)
	_, err := writer.AddItem(ctx, "shopper", AddInput{Product: product("A", "1")})
	require.NoError(t, err)
	_, err = writer.AddItem(ctx, "shopper", AddInput{Product: product("B", "2")})
	require.NoError(t, err)

	svc := New(cartrepo.New(&flakyStorage{Store: backing, failGets: 1}), nil, DefaultPricing(), nil)
	_, err = svc.AddItem(ctx, "shopper", AddInput{Product: product("C", "3")})
	require.Error(t, err)
	require.Zero(t, svc.Cached(), "failed loads are not cached")

	view, err := svc.AddItem(ctx, "shopper", AddInput{Product: product("C", "3")})
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 3)

	stored, err := cartrepo.New(backing).Load(ctx, "shopper")
	require.NoError(t, err)
	require.Len(t, stored.Items, 3)
	require.Equal(t, "A", stored.Items[0].ProductID)
	require.Equal(t, "B", stored.Items[1].ProductID)
	require.Equal(t, "C", stored.Items[2].ProductID)
}

func TestService_StoreCacheIsBounded(t *testing.T) {
	ctx := context.Background()
	svc := New(cartrepo.New(storage.NewMemory()), nil, DefaultPricing(), nil, WithStoreCache(2, 0))

	_, err := svc.AddItem(ctx, "k1", AddInput{Product: product("A", "1"), Quantity: intPtr(2)})
	require.NoError(t, err)
	for _, key := range []string{"k2", "k3", "k4", "k5"} {
		_, err := svc.Get(ctx, key)
		require.NoError(t, err)
	}
	require.Equal(t, 2, svc.Cached())

	view, err := svc.Get(ctx, "k1")
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1, "evicted cart reloads from storage")
	require.Equal(t, 2, view.Cart.Items[0].Quantity)
	require.Equal(t, 2, svc.Cached())
}

func TestService_ExpiredStoreReloadsFromStorage(t *testing.T) {
	ctx := context.Background()
	repo := cartrepo.New(storage.NewMemory())
	svc := New(repo, nil, DefaultPricing(), nil, WithStoreCache(10, 20*time.Millisecond))

	view, err := svc.Get(ctx, "k")
	require.NoError(t, err)
	require.Empty(t, view.Cart.Items)

	other := New(repo, nil, DefaultPricing(), nil)
	_, err = other.AddItem(ctx, "k", AddInput{Product: product("A", "1")})
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	view, err = svc.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, view.Cart.Items, 1)
}

func TestService_ReportsMemoryOnlyKeys(t *testing.T) {
	ctx := context.Background()
	repo := &stubRepo{loadErr: domain.ErrNotFound, saveErr: errors.New("disk full")}
	svc := New(repo, nil, DefaultPricing(), nil)

	_, err := svc.AddItem(ctx, "k", AddInput{Product: product("A", "1")})
	require.NoError(t, err)
	require.True(t, svc.MemoryOnly("k"))
	require.False(t, svc.MemoryOnly("never-seen"))
}
