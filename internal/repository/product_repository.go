package repository

import (
	"bakery/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Product directory. Only available products are listed; FindByID also
// returns unavailable ones so a cart can still price them.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (model.Product, error)
	ListAvailable(ctx context.Context) ([]model.Product, error)
	ListFeatured(ctx context.Context) ([]model.Product, error)
	ListByCategorySlug(ctx context.Context, slug string) ([]model.Product, error)
}
