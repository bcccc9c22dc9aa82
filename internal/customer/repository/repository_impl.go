package repository

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/customer/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// ReplaceAll swaps the stored roster for the given snapshot. Callers should
// pass a transaction handle.
func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, customers []domain.Customer) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM customers`).Error; err != nil {
		return err
	}
	if len(customers) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(customers, insertBatchSize).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Customer, error) {
	var items []domain.Customer
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Order("customer_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&count).Error
	return count, err
}
