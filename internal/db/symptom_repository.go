package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
)

type SymptomRepository struct {
	database *gorm.DB
}

func NewSymptomRepository(database *gorm.DB) *SymptomRepository {
	return &SymptomRepository{database: database}
}

func (repo *SymptomRepository) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.SymptomLog, error) {
	return listSince[models.SymptomLog](ctx, repo.database, userID, "timestamp", since, limit)
}

func (repo *SymptomRepository) Create(ctx context.Context, entry *models.SymptomLog) error {
	entry.Timestamp = entry.Timestamp.UTC()
	return repo.database.WithContext(ctx).Create(entry).Error
}
