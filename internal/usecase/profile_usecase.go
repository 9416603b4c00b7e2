package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"
)

type ProfileUsecase struct {
	profiles repo.ProfileRepository
}

func NewProfileUsecase(profiles repo.ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{profiles: profiles}
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	State     string
}

func (u *ProfileUsecase) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	if userID == "" {
		return model.Profile{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p, err := u.profiles.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Profile{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Profile{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// UpdateProfile creates the profile on first save.
func (u *ProfileUsecase) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (model.Profile, error) {
	if userID == "" {
		return model.Profile{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	p := model.Profile{
		ID:        userID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
	}
	if len(p.FirstName) > 100 || len(p.LastName) > 100 || len(p.City) > 100 || len(p.State) > 100 {
		return model.Profile{}, NewHTTPError(http.StatusBadRequest, "invalid input")
	}
	if len(p.Phone) > 50 {
		return model.Profile{}, NewHTTPError(http.StatusBadRequest, "invalid phone")
	}

	if err := u.profiles.Upsert(ctx, p); err != nil {
		return model.Profile{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}
