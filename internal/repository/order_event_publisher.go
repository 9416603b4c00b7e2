package repository

import (
	"context"

	"bakery/internal/domain/model"
)

// Notifies downstream consumers (kitchen, delivery) about placed orders.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem) error
}
