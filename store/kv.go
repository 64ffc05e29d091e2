// Package store provides the key-value persistence used by the history and
// settings stores. Values are opaque blobs; callers own the encoding.
package store

import "context"

// KV is the storage boundary. Put overwrites any existing value.
type KV interface {
	// Get returns ErrNotFound when key has never been written or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
