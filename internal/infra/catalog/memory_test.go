package catalog

import (
	"context"
	"testing"

	repo "bakery/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCatalog_FindByID(t *testing.T) {
	c := NewMemoryCatalog(SeedProducts(), SeedCategories())

	p, err := c.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Red Velvet Cake", p.Name)
	assert.Equal(t, int64(12000), p.Price)

	size, ok := p.Option("Size")
	require.True(t, ok)
	medium, ok := size.Choice("medium")
	require.True(t, ok)
	assert.Equal(t, int64(3000), medium.PriceAdjustment)

	_, err = c.FindByID(context.Background(), "999")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMemoryCatalog_Listings(t *testing.T) {
	ctx := context.Background()
	products := SeedProducts()
	products[7].Available = false // Coconut Bread off the menu
	c := NewMemoryCatalog(products, SeedCategories())

	all, err := c.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	featured, err := c.ListFeatured(ctx)
	require.NoError(t, err)
	assert.Len(t, featured, 3)

	bread, err := c.ListByCategorySlug(ctx, "bread")
	require.NoError(t, err)
	require.Len(t, bread, 1)
	assert.Equal(t, "Agege Bread", bread[0].Name)

	_, err = c.ListByCategorySlug(ctx, "drinks")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// unavailable products still resolve for pricing
	_, err = c.FindByID(ctx, "8")
	assert.NoError(t, err)
}

func TestMemoryCatalog_FindByIDHonoursContext(t *testing.T) {
	c := NewMemoryCatalog(SeedProducts(), SeedCategories())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FindByID(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
