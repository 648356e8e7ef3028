package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
)

type CheckInRepository struct {
	database *gorm.DB
}

func NewCheckInRepository(database *gorm.DB) *CheckInRepository {
	return &CheckInRepository{database: database}
}

func (repo *CheckInRepository) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.DailyCheckIn, error) {
	return listSince[models.DailyCheckIn](ctx, repo.database, userID, "date", since, limit)
}

// Upsert stores the check-in for its calendar day, replacing the mood and
// energy of an existing check-in on the same day.
func (repo *CheckInRepository) Upsert(ctx context.Context, entry *models.DailyCheckIn) error {
	entry.Date = entry.Date.UTC()
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := models.DailyCheckIn{}
		result := tx.Where("user_id = ? AND date = ?", entry.UserID, entry.Date).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Create(entry).Error
		}

		entry.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]any{
			"mood":         entry.Mood,
			"energy_level": entry.EnergyLevel,
		}).Error
	})
}
