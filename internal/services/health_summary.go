package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUserIDRequired           = errors.New("user id is required")
	ErrHealthSummaryUnavailable = errors.New("health summary unavailable")
)

// HealthSnapshot is the compact grounding context handed to the AI flows.
// It is rebuilt on every request and never stored.
type HealthSnapshot struct {
	Cycle     PhaseResult       `json:"cycle"`
	Symptoms  []string          `json:"symptoms"`
	Nutrition []SnapshotMeal    `json:"nutrition"`
	Fitness   []SnapshotWorkout `json:"fitness"`
}

type SnapshotMeal struct {
	MealName  string          `json:"mealName"`
	PCOSScore float64         `json:"pcosScore"`
	FoodItems json.RawMessage `json:"foodItems"`
}

type SnapshotWorkout struct {
	ActivityType string  `json:"activityType"`
	Duration     float64 `json:"duration"`
}

// SummaryPlan mirrors what the AI tools look at: the latest cycle, a week of
// symptoms and workouts and the last two days of meals.
func SummaryPlan() FetchPlan {
	return FetchPlan{
		Cycles:    &StreamWindow{Limit: 1},
		Symptoms:  &StreamWindow{Days: 7, Limit: 20},
		Nutrition: &StreamWindow{Days: 2, Limit: 10},
		Fitness:   &StreamWindow{Days: 7, Limit: 10},
	}
}

type SummaryService struct {
	fetcher *WindowFetcher
	now     func() time.Time
}

func NewSummaryService(fetcher *WindowFetcher) *SummaryService {
	return &SummaryService{fetcher: fetcher, now: time.Now}
}

// BuildSummary fetches the summary plan for the user and projects it into a
// snapshot. Sparse or partially failed data still yields a snapshot; only a
// blank user id or a failure of every stream is reported as an error.
func (service *SummaryService) BuildSummary(ctx context.Context, userID string) (HealthSnapshot, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return HealthSnapshot{}, ErrUserIDRequired
	}

	streams := service.fetcher.Fetch(ctx, userID, SummaryPlan())
	if streams.AllFailed() {
		return HealthSnapshot{}, fmt.Errorf("%w: all %d streams failed", ErrHealthSummaryUnavailable, streams.Requested)
	}

	return BuildSnapshot(streams, service.now()), nil
}

func BuildSnapshot(streams Streams, now time.Time) HealthSnapshot {
	snapshot := HealthSnapshot{
		Cycle:     InferPhase(CurrentCycle(streams.Cycles), now),
		Symptoms:  make([]string, 0, len(streams.Symptoms)),
		Nutrition: make([]SnapshotMeal, 0, len(streams.Nutrition)),
		Fitness:   make([]SnapshotWorkout, 0, len(streams.Fitness)),
	}

	for _, symptom := range streams.Symptoms {
		snapshot.Symptoms = append(snapshot.Symptoms, symptom.SymptomType)
	}
	for _, meal := range streams.Nutrition {
		snapshot.Nutrition = append(snapshot.Nutrition, SnapshotMeal{
			MealName:  meal.MealName,
			PCOSScore: meal.PCOSScore,
			FoodItems: foodItemsJSON(meal.FoodItems),
		})
	}
	for _, workout := range streams.Fitness {
		snapshot.Fitness = append(snapshot.Fitness, SnapshotWorkout{
			ActivityType: workout.ActivityType,
			Duration:     workout.Duration,
		})
	}
	return snapshot
}

func foodItemsJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return json.RawMessage("[]")
	}
	return json.RawMessage(raw)
}
