package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// ReplaceAll swaps the whole feature table for a new build.
	ReplaceAll(ctx context.Context, db *gorm.DB, rows []CustomerFeatures) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]CustomerFeatures, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

// Cache keeps a copy of the full feature table between builds.
type Cache interface {
	Load(ctx context.Context) ([]CustomerFeatures, bool, error)
	Store(ctx context.Context, rows []CustomerFeatures) error
	Invalidate(ctx context.Context) error
}
