// Package storage defines the durable key-value surface the client state
// lives on. Values are opaque strings (JSON blobs in practice) addressed by
// short well-known keys such as "cart" and "search_history".
package storage

import "context"

// Store is the persistence surface shared by the cart, session and
// search-history stores.
type Store interface {
	// Get retrieves the value stored under key. Returns an error wrapping
	// errors.ErrNotFound when the key has never been written or was deleted.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value stored under key. The write fully replaces
	// any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Well-known keys.
const (
	KeyCart          = "cart"
	KeySearchHistory = "search_history"
	KeySession       = "session"
)
