package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"storefront/internal/domain"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/service/notify"
)

const (
	defaultMaxStores = 10000
	defaultStoreTTL  = 10 * time.Minute
)

// Service hands out one Store per storage key, loading it on first use.
// Stores are kept in a bounded cache; an entry older than the TTL is
// reloaded from storage on its next access.
type Service struct {
	repo     cartrepo.Repository
	notifier notify.Notifier
	pricing  Pricing
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

func New(repo cartrepo.Repository, notifier notify.Notifier, pricing Pricing, logger *zap.Logger, opts ...Option) *Service {
	o := serviceOptions{maxStores: defaultMaxStores, storeTTL: defaultStoreTTL}
	for _, opt := range opts {
		opt(&o)
	}
	logger = logging.OrNop(logger).Named("cart")
	return &Service{
		repo:     repo,
		notifier: notifier,
		pricing:  pricing,
		logger:   logger,
		stores:   expirable.NewLRU[string, *Store](o.maxStores, nil, o.storeTTL),
	}
}

// View is what presentation surfaces render: state plus derived totals.
type View struct {
	Cart   domain.Cart
	Totals Totals
}

// Handoff is the read-only snapshot given to the checkout step.
type Handoff struct {
	StorageKey string
	Items      []domain.LineItem
	Totals     Totals
}

type AddInput struct {
	Product  domain.Product `json:"product"`
	Quantity *int           `json:"quantity,omitempty"`
	Size     string         `json:"size,omitempty"`
	Color    string         `json:"color,omitempty"`
}

type LineInput struct {
	ProductID string `json:"productId"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func (in LineInput) key() domain.LineKey {
	return domain.LineKey{ProductID: in.ProductID, Variant: domain.Variant{Size: in.Size, Color: in.Color}}
}

// Store returns the aggregate for storageKey. A load failure is returned
// and nothing is cached, so the next call retries.
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
	pricing := s.pricing
	st, err := Open(ctx, key, StoreDeps{
		Repo:     s.repo,
		Notifier: s.notifier,
		Pricing:  &pricing,
		Logger:   s.logger,
	})
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

func (s *Service) Get(ctx context.Context, storageKey string) (View, error) {
	return s.with(ctx, storageKey, func(*Store) error { return nil })
}

// AddItem adds a product; quantity defaults to 1 when omitted.
func (s *Service) AddItem(ctx context.Context, storageKey string, in AddInput) (View, error) {
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	return s.with(ctx, storageKey, func(st *Store) error {
		return st.AddItem(ctx, in.Product, qty, domain.Variant{Size: in.Size, Color: in.Color})
	})
}

func (s *Service) RemoveItem(ctx context.Context, storageKey string, in LineInput) (View, error) {
	return s.with(ctx, storageKey, func(st *Store) error {
		st.RemoveItem(ctx, in.key())
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, storageKey string, in LineInput, quantity int) (View, error) {
	return s.with(ctx, storageKey, func(st *Store) error {
		st.UpdateQuantity(ctx, in.key(), quantity)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, storageKey string) (View, error) {
	return s.with(ctx, storageKey, func(st *Store) error {
		st.Clear(ctx)
		return nil
	})
}

func (s *Service) Open(ctx context.Context, storageKey string) (View, error) {
	return s.with(ctx, storageKey, func(st *Store) error {
		st.Open(ctx)
		return nil
	})
}

func (s *Service) Close(ctx context.Context, storageKey string) (View, error) {
	return s.with(ctx, storageKey, func(st *Store) error {
		st.Close(ctx)
		return nil
	})
}

func (s *Service) Toggle(ctx context.Context, storageKey string) (View, error) {
	return s.with(ctx, storageKey, func(st *Store) error {
		st.Toggle(ctx)
		return nil
	})
}

// Checkout reads the cart for order submission without mutating it.
func (s *Service) Checkout(ctx context.Context, storageKey string) (Handoff, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return Handoff{}, err
	}
	cart, totals := st.Snapshot()
	return Handoff{StorageKey: st.key, Items: cart.Items, Totals: totals}, nil
}

func (s *Service) with(ctx context.Context, storageKey string, fn func(*Store) error) (View, error) {
	st, err := s.Store(ctx, storageKey)
	if err != nil {
		return View{}, err
	}
	if err := fn(st); err != nil {
		return View{}, err
	}
	cart, totals := st.Snapshot()
	return View{Cart: cart, Totals: totals}, nil
}
