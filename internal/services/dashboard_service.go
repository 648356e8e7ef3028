package services

import (
	"context"
	"strings"
	"time"
)

const (
	dashboardCycleHistory  = 12
	dashboardWindowDays    = 7
	recurringSymptomWindow = 20
)

// Dashboard is everything the home screen derives from one snapshot of the
// trailing week.
type Dashboard struct {
	Cycle        PhaseResult        `json:"cycle"`
	Boundaries   *PhaseBoundaries   `json:"boundaries,omitempty"`
	History      CycleHistory       `json:"cycleHistory"`
	HealthScore  ScoreBreakdown     `json:"healthScore"`
	Recurring    []RecurringSymptom `json:"recurringSymptoms"`
	PartialData  bool               `json:"partialData"`
	FailedStream []Stream           `json:"failedStreams,omitempty"`
}

func DashboardPlan() FetchPlan {
	window := func() *StreamWindow {
		return &StreamWindow{Days: dashboardWindowDays}
	}
	return FetchPlan{
		Cycles:    &StreamWindow{Limit: dashboardCycleHistory},
		Symptoms:  window(),
		Nutrition: window(),
		Fitness:   window(),
		CheckIns:  window(),
	}
}

type DashboardService struct {
	fetcher  *WindowFetcher
	location *time.Location
	now      func() time.Time
}

func NewDashboardService(fetcher *WindowFetcher, location *time.Location) *DashboardService {
	if location == nil {
		location = time.UTC
	}
	return &DashboardService{fetcher: fetcher, location: location, now: time.Now}
}

func (service *DashboardService) Build(ctx context.Context, userID string) (Dashboard, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Dashboard{}, ErrUserIDRequired
	}

	streams := service.fetcher.Fetch(ctx, userID, DashboardPlan())
	return BuildDashboard(streams, service.now(), service.location), nil
}

// BuildDashboard derives phase, score and recurring symptoms from the same
// fetched streams. Failed streams only mark the result as partial.
func BuildDashboard(streams Streams, now time.Time, location *time.Location) Dashboard {
	current := CurrentCycle(streams.Cycles)
	dashboard := Dashboard{
		Cycle:        InferPhase(current, now),
		History:      BuildCycleHistory(streams.Cycles, location),
		HealthScore:  ScoreHealth(streams.CheckIns, streams.Symptoms, streams.Nutrition, streams.Fitness),
		Recurring:    FindRecurring(streams.Symptoms),
		PartialData:  len(streams.Failed) > 0,
		FailedStream: streams.Failed,
	}
	if dashboard.Cycle.Phase != PhaseUnknown {
		bounds := PhaseBoundariesFor(current.Length)
		dashboard.Boundaries = &bounds
	}
	return dashboard
}

// Score computes the Health Score over a custom trailing window. The window
// is uncapped and relies on the time filter alone.
func (service *DashboardService) Score(ctx context.Context, userID string, days int) (ScoreBreakdown, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ScoreBreakdown{}, ErrUserIDRequired
	}
	if days <= 0 {
		days = dashboardWindowDays
	}

	window := func() *StreamWindow {
		return &StreamWindow{Days: days}
	}
	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{
		Symptoms:  window(),
		Nutrition: window(),
		Fitness:   window(),
		CheckIns:  window(),
	})
	return ScoreHealth(streams.CheckIns, streams.Symptoms, streams.Nutrition, streams.Fitness), nil
}

// Phase infers the cycle phase for an arbitrary reference date from the
// user's newest cycle.
func (service *DashboardService) Phase(ctx context.Context, userID string, reference time.Time) (PhaseResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PhaseResult{}, ErrUserIDRequired
	}
	if reference.IsZero() {
		reference = service.now()
	}

	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{Cycles: &StreamWindow{Limit: 1}})
	return InferPhase(CurrentCycle(streams.Cycles), reference), nil
}

// Recurring lists symptoms logged more than once over the last 20 days.
func (service *DashboardService) Recurring(ctx context.Context, userID string) ([]RecurringSymptom, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{
		Symptoms: &StreamWindow{Days: recurringSymptomWindow},
	})
	return FindRecurring(streams.Symptoms), nil
}
