// Package storage provides the durable key-value persistence the cart and
// wishlist stores write through. Values are opaque JSON documents.
package storage

import (
	"context"
)

// Store is a durable key-value store. Get returns domain.ErrNotFound when
// the key has never been written or was deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Key joins a namespace and a storage key, e.g. "cart-storage:abc123".
func Key(namespace, storageKey string) string {
	return namespace + ":" + storageKey
}
