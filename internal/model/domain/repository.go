package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, run *Run) error
	FindByRunID(ctx context.Context, db *gorm.DB, runID string) (*Run, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]Run, error)
}
