package repository

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/invoice/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 1000

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, invoices []domain.Invoice) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM invoices`).Error; err != nil {
		return err
	}
	if len(invoices) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(invoices, insertBatchSize).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Invoice, error) {
	var items []domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Order("invoice_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Invoice{}).Count(&count).Error
	return count, err
}
