package repository

import (
	"context"
	"errors"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) FindByID(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Profile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// insert or overwrite every editable column
func (r *ProfileGormRepository) Upsert(ctx context.Context, p model.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "phone", "address", "city", "state", "updated_at",
		}),
	}).Create(&p).Error
}
