package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LabResultRepository struct {
	database *gorm.DB
}

func NewLabResultRepository(database *gorm.DB) *LabResultRepository {
	return &LabResultRepository{database: database}
}

func (repo *LabResultRepository) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.LabResult, error) {
	return listSince[models.LabResult](ctx, repo.database, userID, "test_date", since, limit)
}

func (repo *LabResultRepository) Create(ctx context.Context, entry *models.LabResult) error {
	entry.TestDate = entry.TestDate.UTC()
	if entry.Results == nil {
		entry.Results = datatypes.NewJSONSlice([]models.LabMarker{})
	}
	return repo.database.WithContext(ctx).Create(entry).Error
}
