package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductUsecase_ListProducts_All(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	items := []model.Product{{ID: "1", Name: "Red Velvet Cake", Available: true}}
	pRepo.On("ListAvailable", mock.Anything).Return(items, nil).Twice()

	out, err := uc.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = uc.ListProducts(context.Background(), "all")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_ListProducts_ByCategory(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("ListByCategorySlug", mock.Anything, "bread").Return([]model.Product{{ID: "2"}, {ID: "8"}}, nil)
	pRepo.On("ListByCategorySlug", mock.Anything, "drinks").Return([]model.Product{}, repo.ErrNotFound)

	out, err := uc.ListProducts(context.Background(), " bread ")
	require.NoError(t, err)
	assert.Len(t, out, 2)

	_, err = uc.ListProducts(context.Background(), "drinks")
	assertHTTPError(t, err, http.StatusNotFound, "category not found")

	pRepo.AssertExpectations(t)
}

func TestProductUsecase_ListFeatured_DBError(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("ListFeatured", mock.Anything).Return(nil, errDB)

	_, err := uc.ListFeatured(context.Background())
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}

func TestProductUsecase_GetProductDetail(t *testing.T) {
	pRepo := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(pRepo)

	pRepo.On("FindByID", mock.Anything, "1").Return(model.Product{ID: "1", Available: true}, nil)
	pRepo.On("FindByID", mock.Anything, "8").Return(model.Product{ID: "8", Available: false}, nil)
	pRepo.On("FindByID", mock.Anything, "99").Return(model.Product{}, repo.ErrNotFound)

	p, err := uc.GetProductDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)

	_, err = uc.GetProductDetail(context.Background(), "8")
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	_, err = uc.GetProductDetail(context.Background(), "99")
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	_, err = uc.GetProductDetail(context.Background(), " ")
	assertHTTPError(t, err, http.StatusBadRequest, "invalid id")

	pRepo.AssertExpectations(t)
}

func TestCategoryUsecase_ListCategories(t *testing.T) {
	cRepo := new(CategoryRepoMock)
	uc := usecase.NewCategoryUsecase(cRepo)

	cRepo.On("List", mock.Anything).Return([]model.Category{{ID: "1", Slug: "cakes"}}, nil).Once()
	out, err := uc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cakes", out[0].Slug)

	cRepo.On("List", mock.Anything).Return(nil, errDB).Once()
	_, err = uc.ListCategories(context.Background())
	assertHTTPError(t, err, http.StatusInternalServerError, "db error")
}
