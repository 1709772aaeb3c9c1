package ports

import "context"

// Cache stores normalized text. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value or domain.ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
