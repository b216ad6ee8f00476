package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLineItem indicates malformed input for a cart or wishlist mutation.
	ErrInvalidLineItem = errors.New("invalid line item input")
	// ErrStorageKeyRequired is returned for a blank storage key.
	ErrStorageKeyRequired = errors.New("storage key required")
	// ErrCorruptState indicates a persisted value exists but cannot be decoded.
	ErrCorruptState = errors.New("stored state unreadable")
	// ErrNotPersisted indicates a write was applied in memory only.
	ErrNotPersisted = errors.New("not persisted")
)
