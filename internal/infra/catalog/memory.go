package catalog

import (
	"context"
	"sync"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

// MemoryCatalog serves products and categories from memory.
// Used when no database is configured, and by tests.
type MemoryCatalog struct {
	mu         sync.RWMutex
	products   []model.Product
	categories []model.Category
}

func NewMemoryCatalog(products []model.Product, categories []model.Category) *MemoryCatalog {
	c := &MemoryCatalog{}
	c.Replace(products, categories)
	return c
}

// Replace swaps the whole catalog, e.g. after a menu change.
func (c *MemoryCatalog) Replace(products []model.Product, categories []model.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append([]model.Product(nil), products...)
	c.categories = append([]model.Category(nil), categories...)
}

func (c *MemoryCatalog) FindByID(ctx context.Context, id string) (model.Product, error) {
	if err := ctx.Err(); err != nil {
		return model.Product{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (c *MemoryCatalog) ListAvailable(ctx context.Context) ([]model.Product, error) {
	return c.filter(func(p model.Product) bool { return p.Available }), nil
}

func (c *MemoryCatalog) ListFeatured(ctx context.Context) ([]model.Product, error) {
	return c.filter(func(p model.Product) bool { return p.Available && p.Featured }), nil
}

func (c *MemoryCatalog) ListByCategorySlug(ctx context.Context, slug string) ([]model.Product, error) {
	if _, err := c.FindBySlug(ctx, slug); err != nil {
		return []model.Product{}, err
	}
	return c.filter(func(p model.Product) bool { return p.Available && p.CategorySlug == slug }), nil
}

func (c *MemoryCatalog) filter(keep func(model.Product) bool) []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []model.Product{}
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *MemoryCatalog) List(ctx context.Context) ([]model.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Category{}, c.categories...), nil
}

func (c *MemoryCatalog) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, cat := range c.categories {
		if cat.Slug == slug {
			return cat, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}
