package repository

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/feature/domain"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ReplaceAll(ctx context.Context, db *gorm.DB, rows []domain.CustomerFeatures) error {
	if err := db.WithContext(ctx).Exec(`DELETE FROM customer_features`).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.CustomerFeatures, error) {
	stmt := db.WithContext(ctx).Model(&domain.CustomerFeatures{})
	if len(filter.CustomerIDs) > 0 {
		stmt = stmt.Where("customer_id IN ?", filter.CustomerIDs)
	}
	if len(filter.Industries) > 0 {
		stmt = stmt.Where("industry IN ?", filter.Industries)
	}
	if len(filter.Regions) > 0 {
		stmt = stmt.Where("region IN ?", filter.Regions)
	}

	var items []domain.CustomerFeatures
	if err := stmt.Order("customer_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.CustomerFeatures{}).Count(&count).Error
	return count, err
}
