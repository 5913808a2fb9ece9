package store

import "context"

// Backend is a local key-value store of opaque byte values.
//
// Implementations must be safe for concurrent use. Get returns
// ErrKeyNotFound for absent keys; Delete of an absent key is not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix, in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
