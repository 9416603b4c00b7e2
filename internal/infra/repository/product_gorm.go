package repository

import (
	"context"
	"errors"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// options and choices come back in display order
func (r *ProductGormRepository) withOptions(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc").Order("id asc")
		}).
		Preload("Options.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc").Order("id asc")
		})
}

// FindByID also returns unavailable products; carts still need their price.
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.withOptions(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	fillSlug(&p)
	return p, nil
}

func (r *ProductGormRepository) ListAvailable(ctx context.Context) ([]model.Product, error) {
	return r.list(r.withOptions(ctx).Where("available = ?", true))
}

func (r *ProductGormRepository) ListFeatured(ctx context.Context) ([]model.Product, error) {
	return r.list(r.withOptions(ctx).Where("available = ? AND featured = ?", true, true))
}

func (r *ProductGormRepository) ListByCategorySlug(ctx context.Context, slug string) ([]model.Product, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return []model.Product{}, err
	}

	return r.list(r.withOptions(ctx).Where("available = ? AND category_id = ?", true, c.ID))
}

func (r *ProductGormRepository) list(tx *gorm.DB) ([]model.Product, error) {
	var products []model.Product
	if err := tx.Order("id asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	for i := range products {
		fillSlug(&products[i])
	}
	return products, nil
}

func fillSlug(p *model.Product) {
	if p.Category != nil {
		p.CategorySlug = p.Category.Slug
	}
}
