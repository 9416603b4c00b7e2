package repository

import (
	"context"

	"bakery/internal/domain/model"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) error
}
