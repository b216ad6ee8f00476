package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"storefront/internal/domain"
	"storefront/internal/logging"
	wishlistrepo "storefront/internal/repository/wishlist"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/notify"
)

type cartAdder interface {
	AddItem(ctx context.Context, storageKey string, in cartsvc.AddInput) (cartsvc.View, error)
}

const (
	defaultMaxStores = 10000
	defaultStoreTTL  = 10 * time.Minute
)

// Service keeps one Store per storage key in a bounded cache. Entries older
// than the TTL are reloaded from storage on their next access.
type Service struct {
	repo     wishlistrepo.Repository
	notifier notify.Notifier
	cart     cartAdder
	logger   *zap.Logger

	mu     sync.Mutex
	stores *expirable.LRU[string, *Store]
}

// Option tunes a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	maxStores int
	storeTTL  time.Duration
}

// WithStoreCache bounds the number of cached stores and how long one is
// served before a reload. A ttl of zero never expires entries.
func WithStoreCache(maxStores int, ttl time.Duration) Option {
	return func(o *serviceOptions) {
		if maxStores > 0 {
			o.maxStores = maxStores
		}
		o.storeTTL = ttl
	}
}

func New(repo wishlistrepo.Repository, notifier notify.Notifier, cart cartAdder, logger *zap.Logger, opts ...Option) *Service {
	o := serviceOptions{maxStores: defaultMaxStores, storeTTL: defaultStoreTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		cart:     cart,
		logger:   logging.OrNop(logger).Named("wishlist"),
		stores:   expirable.NewLRU[string, *Store](o.maxStores, nil, o.storeTTL),
	}
}

// Store returns the wishlist for storageKey. A load failure is returned and
// nothing is cached.
func (s *Service) Store(ctx context.Context, storageKey string) (*Store, error) {
	key := strings.TrimSpace(storageKey)
	if key == "" {
		return nil, domain.ErrStorageKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores.Get(key); ok {
		return st, nil
	}
	st, err := Open(ctx, key, StoreDeps{Repo: s.repo, Notifier: s.notifier, Logger: s.logger})
	if err != nil {
		return nil, err
	}
	s.stores.Add(key, st)
	return st, nil
}

// Cached reports how many stores are held in memory.
func (s *Service) Cached() int {
	return s.stores.Len()
}

// MemoryOnly reports whether the cached store for storageKey has stopped
// persisting. Keys without a cached store report false.
func (s *Service) MemoryOnly(storageKey string) bool {
	st, ok := s.stores.Peek(strings.TrimSpace(storageKey))
	return ok && st.MemoryOnly()
}

func (s *Service) List(ctx context.Context, storageKey string) ([]domain.WishlistItem, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	return st.Items(), nil
}

func (s *Service) Add(ctx context.Context, storageKey string, p domain.Product) (bool, []domain.WishlistItem, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return false, nil, err
	}
	added, err := st.Add(ctx, p)
	if err != nil {
		return false, nil, err
	}
	return added, st.Items(), nil
}

func (s *Service) Toggle(ctx context.Context, storageKey string, p domain.Product) (bool, []domain.WishlistItem, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return false, nil, err
	}
	present, err := st.Toggle(ctx, p)
	if err != nil {
		return false, nil, err
	}
	return present, st.Items(), nil
}

func (s *Service) Remove(ctx context.Context, storageKey, productID string) ([]domain.WishlistItem, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	st.Remove(ctx, productID)
	return st.Items(), nil
}

func (s *Service) Clear(ctx context.Context, storageKey string) ([]domain.WishlistItem, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	st.Clear(ctx)
	return st.Items(), nil
}

// MoveToCart adds the saved product to the cart of the same storage key
// with quantity 1 and then drops it from the wishlist.
func (s *Service) MoveToCart(ctx context.Context, storageKey, productID string, variant domain.Variant) (cartsvc.View, error) {
	if s.cart == nil {
		return cartsvc.View{}, errors.New("cart service unavailable")
	}
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return cartsvc.View{}, err
	}
	item, ok := st.Get(productID)
	if !ok {
		return cartsvc.View{}, fmt.Errorf("wishlist item %s: %w", productID, domain.ErrNotFound)
	}
	view, err := s.cart.AddItem(ctx, storageKey, cartsvc.AddInput{
		Product: domain.Product{
			ID:            item.ProductID,
			Name:          item.Name,
			Brand:         item.Brand,
			Images:        imageList(item.ImageURL),
			Price:         item.Price,
			OriginalPrice: item.OriginalPrice,
		},
		Size:  variant.Size,
		Color: variant.Color,
	})
	if err != nil {
		return cartsvc.View{}, err
	}
	st.Remove(ctx, productID)
	s.logger.Debug("moved to cart", zap.String("storage_key", storageKey), zap.String("product_id", productID))
	return view, nil
}

func imageList(url string) []string {
	if url == "" {
		return nil
	}
	return []string{url}
}
