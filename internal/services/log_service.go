package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidCycleStart  = errors.New("invalid cycle start date")
	ErrInvalidCycleEnd    = errors.New("cycle end date precedes start date")
	ErrInvalidCycleLength = errors.New("invalid cycle length")
	ErrCycleNotFound      = errors.New("cycle not found")
	ErrCycleAlreadyClosed = errors.New("cycle already closed")
	ErrInvalidSymptomName = errors.New("invalid symptom name")
	ErrInvalidSeverity    = errors.New("severity must be between 1 and 5")
	ErrInvalidMealName    = errors.New("invalid meal name")
	ErrInvalidPCOSScore   = errors.New("pcos score must be between 0 and 100")
	ErrInvalidFoodItems   = errors.New("food items must be a json array")
	ErrInvalidActivity    = errors.New("invalid activity type")
	ErrInvalidDuration    = errors.New("duration must be zero or positive")
	ErrInvalidCheckIn     = errors.New("mood and energy must be between 0 and 5")
	ErrInvalidLabResult   = errors.New("lab result needs a test type, a test date and named markers")
	ErrLogWriteFailed     = errors.New("log write failed")
)

const (
	maxLabelLength = 80
	maxCycleLength = 120
)

type CycleWriter interface {
	Create(ctx context.Context, cycle *models.Cycle) error
	FindByIDForUser(ctx context.Context, cycleID string, userID string) (models.Cycle, error)
	Close(ctx context.Context, cycle *models.Cycle, endDate time.Time) error
}

type SymptomWriter interface {
	Create(ctx context.Context, entry *models.SymptomLog) error
}

type MealWriter interface {
	Create(ctx context.Context, entry *models.NutritionLog) error
}

type WorkoutWriter interface {
	Create(ctx context.Context, entry *models.FitnessActivity) error
}

type CheckInWriter interface {
	Upsert(ctx context.Context, entry *models.DailyCheckIn) error
}

type LabResultWriter interface {
	Create(ctx context.Context, entry *models.LabResult) error
}

type CycleInput struct {
	StartDate time.Time
	Length    *int
}

type SymptomInput struct {
	SymptomType string
	Severity    int
	BodyZone    string
	Timestamp   time.Time
}

type MealInput struct {
	MealName  string
	PCOSScore float64
	FoodItems json.RawMessage
	LoggedAt  time.Time
}

type WorkoutInput struct {
	ActivityType string
	Duration     float64
	CompletedAt  time.Time
}

type CheckInInput struct {
	Date        time.Time
	Mood        float64
	EnergyLevel float64
}

type LabResultInput struct {
	TestType string
	TestDate time.Time
	Results  []models.LabMarker
}

// LogService validates and stores the user's logged entries. Dates are kept
// as calendar days in the service location; instants are stored as given.
type LogService struct {
	cycles   CycleWriter
	symptoms SymptomWriter
	meals    MealWriter
	workouts WorkoutWriter
	checkIns CheckInWriter
	labs     LabResultWriter
	location *time.Location
	now      func() time.Time
}

func NewLogService(cycles CycleWriter, symptoms SymptomWriter, meals MealWriter, workouts WorkoutWriter, checkIns CheckInWriter, labs LabResultWriter, location *time.Location) *LogService {
	if location == nil {
		location = time.UTC
	}
	return &LogService{
		cycles:   cycles,
		symptoms: symptoms,
		meals:    meals,
		workouts: workouts,
		checkIns: checkIns,
		labs:     labs,
		location: location,
		now:      time.Now,
	}
}

func (service *LogService) StartCycle(ctx context.Context, userID string, input CycleInput) (models.Cycle, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Cycle{}, ErrUserIDRequired
	}
	if input.StartDate.IsZero() {
		return models.Cycle{}, ErrInvalidCycleStart
	}
	if input.Length != nil && (*input.Length <= 0 || *input.Length > maxCycleLength) {
		return models.Cycle{}, ErrInvalidCycleLength
	}

	cycle := models.Cycle{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartDate: DateAtLocation(input.StartDate, service.location),
		Length:    input.Length,
	}
	if err := service.cycles.Create(ctx, &cycle); err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return cycle, nil
}

func (service *LogService) EndCycle(ctx context.Context, userID string, cycleID string, endDate time.Time) (models.Cycle, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Cycle{}, ErrUserIDRequired
	}

	cycle, err := service.cycles.FindByIDForUser(ctx, strings.TrimSpace(cycleID), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cycle{}, ErrCycleNotFound
	}
	if err != nil {
		return models.Cycle{}, fmt.Errorf("%w: load cycle: %v", ErrLogWriteFailed, err)
	}
	if !cycle.IsOpen() {
		return models.Cycle{}, ErrCycleAlreadyClosed
	}

	if endDate.IsZero() {
		endDate = service.now()
	}
	end := DateAtLocation(endDate, service.location)
	if CalendarDaysBetween(cycle.StartDate, end, service.location) < 0 {
		return models.Cycle{}, ErrInvalidCycleEnd
	}

	if err := service.cycles.Close(ctx, &cycle, end); err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return cycle, nil
}

func (service *LogService) LogSymptom(ctx context.Context, userID string, input SymptomInput) (models.SymptomLog, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.SymptomLog{}, ErrUserIDRequired
	}
	name := strings.TrimSpace(input.SymptomType)
	if name == "" || len(name) > maxLabelLength {
		return models.SymptomLog{}, ErrInvalidSymptomName
	}
	if input.Severity < models.MinSymptomSeverity || input.Severity > models.MaxSymptomSeverity {
		return models.SymptomLog{}, ErrInvalidSeverity
	}
	zone := strings.TrimSpace(input.BodyZone)
	if zone == "" {
		zone = models.DefaultBodyZone
	}

	entry := models.SymptomLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		SymptomType: name,
		Severity:    input.Severity,
		BodyZone:    zone,
		Timestamp:   service.instantOrNow(input.Timestamp),
	}
	if err := service.symptoms.Create(ctx, &entry); err != nil {
		return models.SymptomLog{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return entry, nil
}

func (service *LogService) LogMeal(ctx context.Context, userID string, input MealInput) (models.NutritionLog, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.NutritionLog{}, ErrUserIDRequired
	}
	name := strings.TrimSpace(input.MealName)
	if name == "" || len(name) > maxLabelLength {
		return models.NutritionLog{}, ErrInvalidMealName
	}
	if !isFinite(input.PCOSScore) || input.PCOSScore < 0 || input.PCOSScore > models.MaxPCOSScore {
		return models.NutritionLog{}, ErrInvalidPCOSScore
	}
	items, err := normalizeFoodItems(input.FoodItems)
	if err != nil {
		return models.NutritionLog{}, err
	}

	entry := models.NutritionLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		MealName:  name,
		PCOSScore: input.PCOSScore,
		FoodItems: items,
		LoggedAt:  service.instantOrNow(input.LoggedAt),
	}
	if err := service.meals.Create(ctx, &entry); err != nil {
		return models.NutritionLog{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return entry, nil
}

func (service *LogService) LogWorkout(ctx context.Context, userID string, input WorkoutInput) (models.FitnessActivity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.FitnessActivity{}, ErrUserIDRequired
	}
	activity := strings.TrimSpace(input.ActivityType)
	if activity == "" || len(activity) > maxLabelLength {
		return models.FitnessActivity{}, ErrInvalidActivity
	}
	if !isFinite(input.Duration) || input.Duration < 0 {
		return models.FitnessActivity{}, ErrInvalidDuration
	}

	entry := models.FitnessActivity{
		ID:           uuid.NewString(),
		UserID:       userID,
		ActivityType: activity,
		Duration:     input.Duration,
		CompletedAt:  service.instantOrNow(input.CompletedAt),
	}
	if err := service.workouts.Create(ctx, &entry); err != nil {
		return models.FitnessActivity{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return entry, nil
}

// SaveCheckIn stores the check-in for its calendar day. A second check-in on
// the same day replaces the first.
func (service *LogService) SaveCheckIn(ctx context.Context, userID string, input CheckInInput) (models.DailyCheckIn, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.DailyCheckIn{}, ErrUserIDRequired
	}
	if !validCheckInLevel(input.Mood) || !validCheckInLevel(input.EnergyLevel) {
		return models.DailyCheckIn{}, ErrInvalidCheckIn
	}

	entry := models.DailyCheckIn{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        DateAtLocation(service.instantOrNow(input.Date), service.location),
		Mood:        input.Mood,
		EnergyLevel: input.EnergyLevel,
	}
	if err := service.checkIns.Upsert(ctx, &entry); err != nil {
		return models.DailyCheckIn{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return entry, nil
}

// LogLabResult stores one lab panel on its calendar day. Marker names, values
// and units are trimmed; every marker needs a name and a value.
func (service *LogService) LogLabResult(ctx context.Context, userID string, input LabResultInput) (models.LabResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.LabResult{}, ErrUserIDRequired
	}
	testType := strings.TrimSpace(input.TestType)
	if testType == "" || len(testType) > maxLabelLength || input.TestDate.IsZero() || len(input.Results) == 0 {
		return models.LabResult{}, ErrInvalidLabResult
	}

	markers := make([]models.LabMarker, 0, len(input.Results))
	for _, marker := range input.Results {
		cleaned := models.LabMarker{
			Marker:      strings.TrimSpace(marker.Marker),
			Value:       strings.TrimSpace(marker.Value),
			Unit:        strings.TrimSpace(marker.Unit),
			NormalRange: strings.TrimSpace(marker.NormalRange),
		}
		if cleaned.Marker == "" || cleaned.Value == "" || len(cleaned.Marker) > maxLabelLength {
			return models.LabResult{}, ErrInvalidLabResult
		}
		markers = append(markers, cleaned)
	}

	entry := models.LabResult{
		ID:       uuid.NewString(),
		UserID:   userID,
		TestType: testType,
		TestDate: DateAtLocation(input.TestDate, service.location),
		Results:  markers,
	}
	if err := service.labs.Create(ctx, &entry); err != nil {
		return models.LabResult{}, fmt.Errorf("%w: %v", ErrLogWriteFailed, err)
	}
	return entry, nil
}

func (service *LogService) instantOrNow(value time.Time) time.Time {
	if value.IsZero() {
		return service.now()
	}
	return value
}

func validCheckInLevel(value float64) bool {
	return isFinite(value) && value >= 0 && value <= models.MaxCheckInLevel
}

func normalizeFoodItems(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []byte("[]"), nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, ErrInvalidFoodItems
	}
	return []byte(trimmed), nil
}
