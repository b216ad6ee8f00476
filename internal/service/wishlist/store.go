package wishlist

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
	wishlistrepo "storefront/internal/repository/wishlist"
	"storefront/internal/service/notify"
)

// Store is the wishlist for one storage key. A product appears at most once.
type Store struct {
	mu         sync.Mutex
	key        string
	list       domain.Wishlist
	repo       wishlistrepo.Repository
	notifier   notify.Notifier
	logger     *zap.Logger
	now        func() time.Time
	memoryOnly bool
}

type StoreDeps struct {
	Repo     wishlistrepo.Repository
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// Open loads the wishlist for storageKey. A missing or undecodable entry
// starts an empty list; any other load failure is returned.
func Open(ctx context.Context, storageKey string, deps StoreDeps) (*Store, error) {
	s := &Store{
		key:      storageKey,
		list:     domain.Wishlist{Items: []domain.WishlistItem{}},
		repo:     deps.Repo,
		notifier: deps.Notifier,
		logger:   logging.OrNop(deps.Logger),
		now:      deps.Now,
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
		s.list = loaded.Clone()
	case errors.Is(err, domain.ErrNotFound):
	case errors.Is(err, domain.ErrCorruptState):
		s.logger.Warn("stored wishlist unreadable, starting empty", zap.Error(err))
	default:
		return nil, fmt.Errorf("load wishlist %s: %w", storageKey, err)
	}
	return s, nil
}

// Add saves the product. It returns false without error when the product
// is already on the list.
func (s *Store) Add(ctx context.Context, p domain.Product) (bool, error) {
	if err := validate(p); err != nil {
		return false, err
	}
	s.mu.Lock()
	added := s.addLocked(ctx, p)
	s.mu.Unlock()

	if added {
		s.notifyAdded(ctx, p.Name, p.ID)
	}
	return added, nil
}

// Remove drops productID and reports whether it was present.
func (s *Store) Remove(ctx context.Context, productID string) bool {
	s.mu.Lock()
	removed, ok := s.removeLocked(ctx, productID)
	s.mu.Unlock()

	if ok {
		s.notifyRemoved(ctx, removed.Name, removed.ProductID)
	}
	return ok
}

// Toggle adds p when absent and removes it when present. It returns
// whether p is on the list afterwards.
func (s *Store) Toggle(ctx context.Context, p domain.Product) (bool, error) {
	if err := validate(p); err != nil {
		return false, err
	}
	s.mu.Lock()
	removed, wasPresent := s.removeLocked(ctx, p.ID)
	if !wasPresent {
		s.addLocked(ctx, p)
	}
	s.mu.Unlock()

	if wasPresent {
		s.notifyRemoved(ctx, removed.Name, removed.ProductID)
		return false, nil
	}
	s.notifyAdded(ctx, p.Name, p.ID)
	return true, nil
}

func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

// Get returns the entry for productID.
func (s *Store) Get(productID string) (domain.WishlistItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(productID); i >= 0 {
		return s.list.Items[i], true
	}
	return domain.WishlistItem{}, false
}

// Clear empties the list and drops its storage entry.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.list.Items) == 0 {
		return
	}
	s.list.Items = []domain.WishlistItem{}
	if s.memoryOnly {
		return
	}
	if err := s.repo.Delete(context.WithoutCancel(ctx), s.key); err != nil {
		s.memoryOnly = true
		s.logger.Warn("wishlist delete failed, continuing in memory", zap.Error(err))
	}
}

// MemoryOnly reports whether a failed write stopped persistence.
func (s *Store) MemoryOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoryOnly
}

func (s *Store) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Clone().Items
}

func (s *Store) indexLocked(productID string) int {
	for i, item := range s.list.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) addLocked(ctx context.Context, p domain.Product) bool {
	if s.indexLocked(p.ID) >= 0 {
		return false
	}
	s.list.Items = append(s.list.Items, s.newItem(p))
	s.persistLocked(ctx)
	return true
}

func (s *Store) removeLocked(ctx context.Context, productID string) (domain.WishlistItem, bool) {
	i := s.indexLocked(productID)
	if i < 0 {
		return domain.WishlistItem{}, false
	}
	removed := s.list.Items[i]
	items := make([]domain.WishlistItem, 0, len(s.list.Items)-1)
	items = append(items, s.list.Items[:i]...)
	s.list.Items = append(items, s.list.Items[i+1:]...)
	s.persistLocked(ctx)
	return removed, true
}

func (s *Store) newItem(p domain.Product) domain.WishlistItem {
	item := domain.WishlistItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		ImageURL:  p.PrimaryImage(),
		Price:     p.Price,
		AddedAt:   s.now().UTC(),
	}
	if p.OriginalPrice != nil {
		orig := *p.OriginalPrice
		item.OriginalPrice = &orig
	}
	return item
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.memoryOnly {
		return
	}
	if err := s.repo.Save(context.WithoutCancel(ctx), s.key, s.list.Clone()); err != nil {
		s.memoryOnly = true
		s.logger.Warn("wishlist save failed, continuing in memory", zap.Error(err))
	}
}

func (s *Store) notifyAdded(ctx context.Context, name, id string) {
	s.notify(ctx, domain.NoticeSuccess, fmt.Sprintf("%s added to wishlist", nameOr(name, id)))
}

func (s *Store) notifyRemoved(ctx context.Context, name, id string) {
	s.notify(ctx, domain.NoticeInfo, fmt.Sprintf("%s removed from wishlist", nameOr(name, id)))
}

func (s *Store) notify(ctx context.Context, kind domain.NoticeKind, msg string) {
	s.notifier.Notify(ctx, s.key, domain.Notice{Kind: kind, Message: msg, CreatedAt: s.now().UTC()})
}

// validate applies the cart's product rules so a saved item can always be
// moved to the cart.
func validate(p domain.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: product id required", domain.ErrInvalidLineItem)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidLineItem)
	}
	return nil
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return fallback
}
