package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ReplaceAll(ctx context.Context, db *gorm.DB, invoices []Invoice) error
	List(ctx context.Context, db *gorm.DB) ([]Invoice, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
