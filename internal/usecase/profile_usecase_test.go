package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
	"bakery/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileUsecase_GetProfile(t *testing.T) {
	pRepo := new(ProfileRepoMock)
	uc := usecase.NewProfileUsecase(pRepo)
	ctx := context.Background()

	pRepo.On("FindByID", mock.Anything, "u-1").Return(model.Profile{ID: "u-1", FirstName: "Ada"}, nil)
	pRepo.On("FindByID", mock.Anything, "u-2").Return(model.Profile{}, repo.ErrNotFound)

	p, err := uc.GetProfile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)

	_, err = uc.GetProfile(ctx, "u-2")
	assertHTTPError(t, err, http.StatusNotFound, "not found")

	_, err = uc.GetProfile(ctx, "")
	assertHTTPError(t, err, http.StatusUnauthorized, "unauthorized")
}

func TestProfileUsecase_UpdateProfile(t *testing.T) {
	pRepo := new(ProfileRepoMock)
	uc := usecase.NewProfileUsecase(pRepo)
	ctx := context.Background()

	pRepo.On("Upsert", mock.Anything, model.Profile{
		ID: "u-1", FirstName: "Ada", LastName: "Obi", Phone: "0803", City: "Lagos",
	}).Return(nil)

	p, err := uc.UpdateProfile(ctx, "u-1", usecase.UpdateProfileInput{
		FirstName: " Ada ", LastName: "Obi", Phone: "0803", City: "Lagos",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)

	_, err = uc.UpdateProfile(ctx, "u-1", usecase.UpdateProfileInput{Phone: strings.Repeat("9", 51)})
	assertHTTPError(t, err, http.StatusBadRequest, "invalid phone")

	pRepo.AssertExpectations(t)
}
