package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository/storage"
)

// Namespace prefixes every persisted cart key.
const Namespace = "cart-storage"

// envelopeVersion is bumped when the persisted shape changes.
const envelopeVersion = 0

// Repository loads and saves the cart persisted under a storage key.
// Load returns domain.ErrNotFound when nothing was saved yet.
type Repository interface {
	Load(ctx context.Context, storageKey string) (*domain.Cart, error)
	Save(ctx context.Context, storageKey string, cart domain.Cart) error
}

type envelope struct {
	State   domain.Cart `json:"state"`
	Version int         `json:"version"`
}

type storageRepo struct {
	store storage.Store
}

func New(store storage.Store) Repository {
	return &storageRepo{store: store}
}

func (r *storageRepo) Load(ctx context.Context, storageKey string) (*domain.Cart, error) {
	raw, err := r.store.Get(ctx, storage.Key(Namespace, storageKey))
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w: %w", storageKey, domain.ErrCorruptState, err)
	}
	if env.State.Items == nil {
		env.State.Items = []domain.LineItem{}
	}
	return &env.State, nil
}

func (r *storageRepo) Save(ctx context.Context, storageKey string, cart domain.Cart) error {
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	raw, err := json.Marshal(envelope{State: cart, Version: envelopeVersion})
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", storageKey, err)
	}
	return r.store.Put(ctx, storage.Key(Namespace, storageKey), raw)
}
