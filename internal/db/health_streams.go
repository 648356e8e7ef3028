package db

import (
	"context"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
)

// HealthStreams exposes the logged streams through one read-only reader.
type HealthStreams struct {
	repos *Repositories
}

func NewHealthStreams(repos *Repositories) *HealthStreams {
	return &HealthStreams{repos: repos}
}

func (streams *HealthStreams) ListCycles(ctx context.Context, userID string, limit int) ([]models.Cycle, error) {
	return streams.repos.Cycles.ListRecent(ctx, userID, limit)
}

func (streams *HealthStreams) ListSymptoms(ctx context.Context, userID string, since time.Time, limit int) ([]models.SymptomLog, error) {
	return streams.repos.Symptoms.ListSince(ctx, userID, since, limit)
}

func (streams *HealthStreams) ListMeals(ctx context.Context, userID string, since time.Time, limit int) ([]models.NutritionLog, error) {
	return streams.repos.Nutrition.ListSince(ctx, userID, since, limit)
}

func (streams *HealthStreams) ListWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]models.FitnessActivity, error) {
	return streams.repos.Fitness.ListSince(ctx, userID, since, limit)
}

func (streams *HealthStreams) ListCheckIns(ctx context.Context, userID string, since time.Time, limit int) ([]models.DailyCheckIn, error) {
	return streams.repos.CheckIns.ListSince(ctx, userID, since, limit)
}

func (streams *HealthStreams) ListLabResults(ctx context.Context, userID string, since time.Time, limit int) ([]models.LabResult, error) {
	return streams.repos.LabResults.ListSince(ctx, userID, since, limit)
}

func (streams *HealthStreams) ListUserIDs(ctx context.Context) ([]string, error) {
	return streams.repos.Cycles.ListUserIDs(ctx)
}

func (streams *HealthStreams) TelegramChatID(ctx context.Context, userID string) (string, bool, error) {
	return streams.repos.TelegramChats.TelegramChatID(ctx, userID)
}
