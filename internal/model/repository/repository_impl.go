package repository

import (
	"context"
	"errors"

	"github.com/railzwaylabs/riskscore/internal/model/domain"
	"gorm.io/gorm"
)

const defaultListLimit = 20

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) FindByRunID(ctx context.Context, db *gorm.DB, runID string) (*domain.Run, error) {
	var run domain.Run
	err := db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var items []domain.Run
	err := db.WithContext(ctx).
		Order("trained_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
