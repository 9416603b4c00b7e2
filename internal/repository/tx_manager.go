package repository

import "context"

// repositories bound to one transaction
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
}

// Hides begin/commit/rollback from the usecases.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
