package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repositories struct {
	Cycles        *CycleRepository
	Symptoms      *SymptomRepository
	Nutrition     *NutritionRepository
	Fitness       *FitnessRepository
	CheckIns      *CheckInRepository
	LabResults    *LabResultRepository
	TelegramChats *TelegramChatRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Cycles:        NewCycleRepository(database),
		Symptoms:      NewSymptomRepository(database),
		Nutrition:     NewNutritionRepository(database),
		Fitness:       NewFitnessRepository(database),
		CheckIns:      NewCheckInRepository(database),
		LabResults:    NewLabResultRepository(database),
		TelegramChats: NewTelegramChatRepository(database),
	}
}

// listSince returns the user's rows whose column is at or after since, newest
// first. A non-positive limit leaves the result uncapped.
func listSince[T any](ctx context.Context, database *gorm.DB, userID string, column string, since time.Time, limit int) ([]T, error) {
	rows := make([]T, 0)
	query := database.WithContext(ctx).
		Where("user_id = ? AND "+column+" >= ?", userID, since.UTC()).
		Order(column + " DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
