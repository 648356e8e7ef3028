package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
)

type FitnessRepository struct {
	database *gorm.DB
}

func NewFitnessRepository(database *gorm.DB) *FitnessRepository {
	return &FitnessRepository{database: database}
}

func (repo *FitnessRepository) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.FitnessActivity, error) {
	return listSince[models.FitnessActivity](ctx, repo.database, userID, "completed_at", since, limit)
}

func (repo *FitnessRepository) Create(ctx context.Context, entry *models.FitnessActivity) error {
	entry.CompletedAt = entry.CompletedAt.UTC()
	return repo.database.WithContext(ctx).Create(entry).Error
}
