package db

import (
	"context"
	"time"

	"bakery/internal/domain/model"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens postgres with the given DSN (URL or key=value form).
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres pool")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.ProductOption{},
		&model.OptionChoice{},
		&model.Order{},
		&model.OrderItem{},
		&model.Profile{},
	)
	return errors.Wrap(err, "migrate")
}

// SeedCatalog inserts categories and products when the products table is
// empty. It reports whether anything was written.
func SeedCatalog(ctx context.Context, db *gorm.DB, categories []model.Category, products []model.Product) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "count products")
	}
	if n > 0 {
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(categories) > 0 {
			if err := tx.Create(&categories).Error; err != nil {
				return errors.Wrap(err, "seed categories")
			}
		}
		// options and choices are created through the associations
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return errors.Wrapf(err, "seed product %s", products[i].ID)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
