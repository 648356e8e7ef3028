package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

// ListRecent returns the user's cycles by start date, newest first. Cycles are
// never bounded by a time window because the open cycle may be old.
func (repo *CycleRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.Cycle, error) {
	cycles := make([]models.Cycle, 0)
	query := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (repo *CycleRepository) FindByIDForUser(ctx context.Context, cycleID string, userID string) (models.Cycle, error) {
	cycle := models.Cycle{}
	if err := repo.database.WithContext(ctx).Where("id = ? AND user_id = ?", cycleID, userID).First(&cycle).Error; err != nil {
		return models.Cycle{}, err
	}
	return cycle, nil
}

func (repo *CycleRepository) Create(ctx context.Context, cycle *models.Cycle) error {
	cycle.StartDate = cycle.StartDate.UTC()
	if cycle.EndDate != nil {
		endDate := cycle.EndDate.UTC()
		cycle.EndDate = &endDate
	}
	return repo.database.WithContext(ctx).Create(cycle).Error
}

func (repo *CycleRepository) Close(ctx context.Context, cycle *models.Cycle, endDate time.Time) error {
	closedAt := endDate.UTC()
	if err := repo.database.WithContext(ctx).
		Model(&models.Cycle{}).
		Where("id = ? AND user_id = ?", cycle.ID, cycle.UserID).
		Update("end_date", closedAt).Error; err != nil {
		return err
	}
	cycle.EndDate = &closedAt
	return nil
}

// ListUserIDs returns every user that has logged a cycle or a daily check-in.
func (repo *CycleRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	userIDs := make([]string, 0)
	err := repo.database.WithContext(ctx).
		Raw(`SELECT user_id FROM cycles UNION SELECT user_id FROM daily_check_ins ORDER BY user_id`).
		Scan(&userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
