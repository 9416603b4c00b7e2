package repository

import "context"

// Durable key-value storage for serialized carts.
// Get returns ErrNotFound when the key is absent.
type CartStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
