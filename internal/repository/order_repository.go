package repository

import (
	"context"
	"errors"

	"bakery/internal/domain/model"
)

// Create returns ErrConflict when the idempotency key is already used.
var ErrConflict = errors.New("conflict")

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (string, error)

	// same key, same order. guestSession is empty for signed-in users.
	FindByIdempotencyKey(ctx context.Context, userID string, guestSession string, key string) (model.Order, bool, error)
}
