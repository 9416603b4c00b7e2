package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// ListProducts returns available products, optionally narrowed to one
// category slug. "" and "all" mean every category.
func (u *ProductUsecase) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	category = strings.TrimSpace(category)

	var (
		items []model.Product
		err   error
	)
	if category == "" || category == "all" {
		items, err = u.productRepo.ListAvailable(ctx)
	} else {
		items, err = u.productRepo.ListByCategorySlug(ctx, category)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return []model.Product{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) ListFeatured(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.ListFeatured(ctx)
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// Unavailable products are reported as not found.
func (u *ProductUsecase) GetProductDetail(ctx context.Context, id string) (model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.Available {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}
