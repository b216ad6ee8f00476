package wishlist

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository/storage"
)

const Namespace = "wishlist-storage"

const envelopeVersion = 0

// Repository persists the wishlist of a storage key. An empty wishlist is
// stored as no entry at all, so Delete is how a list gets cleared.
type Repository interface {
	Load(ctx context.Context, storageKey string) (*domain.Wishlist, error)
	Save(ctx context.Context, storageKey string, list domain.Wishlist) error
	Delete(ctx context.Context, storageKey string) error
}

type envelope struct {
	State   domain.Wishlist `json:"state"`
	Version int             `json:"version"`
}

type storageRepo struct {
	store storage.Store
}

func New(store storage.Store) Repository {
	return &storageRepo{store: store}
}

func (r *storageRepo) Load(ctx context.Context, storageKey string) (*domain.Wishlist, error) {
	raw, err := r.store.Get(ctx, storage.Key(Namespace, storageKey))
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode wishlist %s: %w: %w", storageKey, domain.ErrCorruptState, err)
	}
	if env.State.Items == nil {
		env.State.Items = []domain.WishlistItem{}
	}
	return &env.State, nil
}

func (r *storageRepo) Save(ctx context.Context, storageKey string, list domain.Wishlist) error {
	if list.Items == nil {
		list.Items = []domain.WishlistItem{}
	}
	raw, err := json.Marshal(envelope{State: list, Version: envelopeVersion})
	if err != nil {
		return fmt.Errorf("encode wishlist %s: %w", storageKey, err)
	}
	return r.store.Put(ctx, storage.Key(Namespace, storageKey), raw)
}

func (r *storageRepo) Delete(ctx context.Context, storageKey string) error {
	return r.store.Delete(ctx, storage.Key(Namespace, storageKey))
}
