package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ReplaceAll(ctx context.Context, db *gorm.DB, customers []Customer) error
	List(ctx context.Context, db *gorm.DB) ([]Customer, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
