package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
)

type NutritionRepository struct {
	database *gorm.DB
}

func NewNutritionRepository(database *gorm.DB) *NutritionRepository {
	return &NutritionRepository{database: database}
}

func (repo *NutritionRepository) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.NutritionLog, error) {
	return listSince[models.NutritionLog](ctx, repo.database, userID, "logged_at", since, limit)
}

func (repo *NutritionRepository) Create(ctx context.Context, entry *models.NutritionLog) error {
	entry.LoggedAt = entry.LoggedAt.UTC()
	return repo.database.WithContext(ctx).Create(entry).Error
}
