package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"storefront/internal/domain"
	"storefront/internal/logging"
	cartrepo "storefront/internal/repository/cart"
	"storefront/internal/service/notify"
)

// Store is the cart aggregate for one storage key. All reads and writes of
// its line items go through it; a mutex serializes callers.
type Store struct {
	mu       sync.Mutex
	key      string
	cart     domain.Cart
	repo     cartrepo.Repository
	notifier notify.Notifier
	pricing  Pricing
	logger   *zap.Logger
	now      func() time.Time

	// memoryOnly is set after the first failed save; the store keeps working
	// without persistence for the rest of its life.
	memoryOnly bool
}

// StoreDeps wires the collaborators of a Store. Every field is optional.
type StoreDeps struct {
	Repo     cartrepo.Repository
	Notifier notify.Notifier
	Pricing  *Pricing
	Logger   *zap.Logger
	Now      func() time.Time
}

// Open rehydrates the cart persisted under storageKey, or starts an empty
// one when nothing is stored or the stored value cannot be decoded. Any
// other load failure is returned and no store is built.
func Open(ctx context.Context, storageKey string, deps StoreDeps) (*Store, error) {
	s := &Store{
		key:      storageKey,
		cart:     domain.Cart{Items: []domain.LineItem{}},
		repo:     deps.Repo,
		notifier: deps.Notifier,
		pricing:  DefaultPricing(),
		logger:   logging.OrNop(deps.Logger),
		now:      deps.Now,
	}
	if deps.Pricing != nil {
		s.pricing = *deps.Pricing
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.logger = s.logger.With(zap.String("storage_key", storageKey))

	if s.repo == nil {
		s.memoryOnly = true
		return s, nil
	}
	loaded, err := s.repo.Load(ctx, storageKey)
	switch {
	case err == nil:
		s.cart = loaded.Clone()
		s.logger.Debug("cart rehydrated", zap.Int("items", len(s.cart.Items)))
	case errors.Is(err, domain.ErrNotFound):
	case errors.Is(err, domain.ErrCorruptState):
		s.logger.Warn("stored cart unreadable, starting empty", zap.Error(err))
	default:
		return nil, fmt.Errorf("load cart %s: %w", storageKey, err)
	}
	return s, nil
}

// AddItem merges quantity into the line item matching (product, variant),
// or appends a new line item built from the product snapshot. An existing
// line keeps its original snapshot; only its quantity grows.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int, variant domain.Variant) error {
	if strings.TrimSpace(product.ID) == "" {
		return fmt.Errorf("%w: product id required", domain.ErrInvalidLineItem)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidLineItem)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidLineItem)
	}

	s.mu.Lock()
	key := domain.LineKey{ProductID: product.ID, Variant: variant}
	name := product.Name
	if i := s.indexLocked(key); i >= 0 {
		s.cart.Items[i].Quantity += quantity
		name = s.cart.Items[i].Name
	} else {
		s.cart.Items = append(s.cart.Items, newLineItem(product, quantity, variant))
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(ctx, domain.NoticeSuccess, fmt.Sprintf("%s added to cart", displayName(name, product.ID)))
	return nil
}

// RemoveItem drops the line item with the given identity. It reports
// whether anything was removed; a missing key is a no-op.
func (s *Store) RemoveItem(ctx context.Context, key domain.LineKey) bool {
	s.mu.Lock()
	removed, ok := s.removeLocked(key)
	if ok {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if ok {
		s.notify(ctx, domain.NoticeInfo, fmt.Sprintf("%s removed from cart", displayName(removed.Name, removed.ProductID)))
	}
	return ok
}

// UpdateQuantity sets the quantity of the matching line item. A quantity
// below 1 removes the item. It reports whether a line item matched.
func (s *Store) UpdateQuantity(ctx context.Context, key domain.LineKey, quantity int) bool {
	if quantity < 1 {
		return s.RemoveItem(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(key)
	if i < 0 {
		return false
	}
	if s.cart.Items[i].Quantity != quantity {
		s.cart.Items[i].Quantity = quantity
		s.persistLocked(ctx)
	}
	return true
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cart.Items) == 0 {
		return
	}
	s.cart.Items = []domain.LineItem{}
	s.persistLocked(ctx)
}

func (s *Store) Open(ctx context.Context) {
	s.setOpen(ctx, func(bool) bool { return true })
}

func (s *Store) Close(ctx context.Context) {
	s.setOpen(ctx, func(bool) bool { return false })
}

// Toggle flips the drawer visibility and returns the new value.
func (s *Store) Toggle(ctx context.Context) bool {
	return s.setOpen(ctx, func(open bool) bool { return !open })
}

// Cart returns a copy of the current state.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.cart.Items, s.pricing)
}

// Snapshot returns state and totals read under one lock.
func (s *Store) Snapshot() (domain.Cart, Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone(), ComputeTotals(s.cart.Items, s.pricing)
}

// MemoryOnly reports whether persistence has been given up on.
func (s *Store) MemoryOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoryOnly
}

func (s *Store) setOpen(ctx context.Context, next func(bool) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := next(s.cart.IsOpen)
	if open != s.cart.IsOpen {
		s.cart.IsOpen = open
		s.persistLocked(ctx)
	}
	return open
}

func (s *Store) indexLocked(key domain.LineKey) int {
	for i, item := range s.cart.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(key domain.LineKey) (domain.LineItem, bool) {
	i := s.indexLocked(key)
	if i < 0 {
		return domain.LineItem{}, false
	}
	removed := s.cart.Items[i]
	items := make([]domain.LineItem, 0, len(s.cart.Items)-1)
	items = append(items, s.cart.Items[:i]...)
	items = append(items, s.cart.Items[i+1:]...)
	s.cart.Items = items
	return removed, true
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.memoryOnly {
		return
	}
	// The caller going away must not abort the write.
	if err := s.repo.Save(context.WithoutCancel(ctx), s.key, s.cart.Clone()); err != nil {
		s.memoryOnly = true
		s.logger.Warn("cart save failed, continuing in memory", zap.Error(err))
	}
}

func (s *Store) notify(ctx context.Context, kind domain.NoticeKind, msg string) {
	s.notifier.Notify(ctx, s.key, domain.Notice{Kind: kind, Message: msg, CreatedAt: s.now().UTC()})
}

func newLineItem(p domain.Product, quantity int, variant domain.Variant) domain.LineItem {
	item := domain.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		ImageURL:  p.PrimaryImage(),
		UnitPrice: p.Price,
		Quantity:  quantity,
		Variant:   variant,
	}
	if p.OriginalPrice != nil {
		orig := *p.OriginalPrice
		item.OriginalPrice = &orig
	}
	if p.Stock != nil {
		stock := *p.Stock
		item.Stock = &stock
	}
	return item
}

func displayName(name, fallback string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return fallback
}
