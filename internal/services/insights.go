package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/bloom/internal/flows"
	"github.com/terraincognita07/bloom/internal/models"
)

const (
	cyclePredictionWindow  = 21
	cyclePredictionHistory = 12
	recoveryWindowDays     = 7
	labHistory             = 12
	labSymptomWindow       = 30
	regularCycleSpread     = 7
)

var (
	ErrNoRecurringSymptoms = errors.New("no recurring symptoms logged")
	ErrSymptomNotRecurring = errors.New("symptom is not recurring")
	ErrInsightUnavailable  = errors.New("insight unavailable")
	ErrNoLabResults        = errors.New("no lab results logged")
)

// FlowInvoker runs a named AI flow and returns its validated JSON result.
type FlowInvoker interface {
	Invoke(ctx context.Context, flowName string, input any) (json.RawMessage, error)
}

type SymptomForecastInput struct {
	HistoricalData string `json:"historicalData"`
	TargetSymptom  string `json:"targetSymptom"`
}

type CyclePredictionInput struct {
	HistoricalCycleData string `json:"historicalCycleData"`
	RecentSymptomData   string `json:"recentSymptomData"`
	RecentMoodData      string `json:"recentMoodData"`
	RecentNutritionData string `json:"recentNutritionData"`
}

type RecoveryInput struct {
	HealthSnapshot string `json:"healthSnapshot"`
	CyclePhase     string `json:"cyclePhase"`
}

// RecoverySnapshot is the week of load and energy signals the recovery
// advisor weighs against the current phase.
type RecoverySnapshot struct {
	Workouts []models.FitnessActivity `json:"workouts"`
	Symptoms []models.SymptomLog      `json:"symptoms"`
	CheckIns []models.DailyCheckIn    `json:"checkIns"`
}

// LabPanel is a lab result as the analysis flows read it.
type LabPanel struct {
	ID       string             `json:"id,omitempty"`
	TestType string             `json:"testType"`
	TestDate string             `json:"testDate"`
	Results  []models.LabMarker `json:"results"`
}

type LabResultAnalysisInput struct {
	LabResults     []LabPanel `json:"labResults"`
	SymptomSummary string     `json:"symptomSummary"`
	CycleSummary   string     `json:"cycleSummary"`
}

type PcosSubtypeInput struct {
	SymptomSummary   string `json:"symptomSummary"`
	CycleSummary     string `json:"cycleSummary"`
	LabResultSummary string `json:"labResultSummary"`
}

type Insight struct {
	Flow   string          `json:"flow"`
	Input  any             `json:"input"`
	Result json.RawMessage `json:"result"`
}

type InsightService struct {
	fetcher  *WindowFetcher
	invoker  FlowInvoker
	location *time.Location
	now      func() time.Time
}

func NewInsightService(fetcher *WindowFetcher, invoker FlowInvoker, location *time.Location) *InsightService {
	if location == nil {
		location = time.UTC
	}
	return &InsightService{fetcher: fetcher, invoker: invoker, location: location, now: time.Now}
}

// SymptomForecastRequest picks the forecast target from the user's recurring
// symptoms. A blank target selects the first recurring symptom.
func (service *InsightService) SymptomForecastRequest(ctx context.Context, userID string, target string) (SymptomForecastInput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SymptomForecastInput{}, ErrUserIDRequired
	}

	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{
		Symptoms: &StreamWindow{Days: recurringSymptomWindow},
	})
	if streams.AllFailed() {
		return SymptomForecastInput{}, fmt.Errorf("%w: symptom history failed to load", ErrInsightUnavailable)
	}

	recurring := FindRecurring(streams.Symptoms)
	if len(recurring) == 0 {
		return SymptomForecastInput{}, ErrNoRecurringSymptoms
	}

	target = strings.TrimSpace(target)
	if target == "" {
		target = recurring[0].Name
	} else {
		match, ok := LookupRecurring(recurring, target)
		if !ok {
			return SymptomForecastInput{}, fmt.Errorf("%w: %q", ErrSymptomNotRecurring, target)
		}
		target = match.Name
	}

	history, err := encodeFlowField(streams.Symptoms)
	if err != nil {
		return SymptomForecastInput{}, err
	}
	return SymptomForecastInput{HistoricalData: history, TargetSymptom: target}, nil
}

func (service *InsightService) ForecastSymptom(ctx context.Context, userID string, target string) (Insight, error) {
	input, err := service.SymptomForecastRequest(ctx, userID, target)
	if err != nil {
		return Insight{}, err
	}
	return service.invoke(ctx, flows.SymptomPredictor, input)
}

// CyclePredictionRequest packs up to twelve cycles with three weeks of
// symptoms, moods and meals.
func (service *InsightService) CyclePredictionRequest(ctx context.Context, userID string) (CyclePredictionInput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CyclePredictionInput{}, ErrUserIDRequired
	}

	window := func() *StreamWindow {
		return &StreamWindow{Days: cyclePredictionWindow}
	}
	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{
		Cycles:    &StreamWindow{Limit: cyclePredictionHistory},
		Symptoms:  window(),
		Nutrition: window(),
		CheckIns:  window(),
	})
	if streams.AllFailed() {
		return CyclePredictionInput{}, fmt.Errorf("%w: all %d streams failed", ErrInsightUnavailable, streams.Requested)
	}

	moods := make([]moodEntry, 0, len(streams.CheckIns))
	for _, checkIn := range streams.CheckIns {
		moods = append(moods, moodEntry{
			Date:        DateAtLocation(checkIn.Date, service.location).Format(time.DateOnly),
			Mood:        checkIn.Mood,
			EnergyLevel: checkIn.EnergyLevel,
		})
	}

	input := CyclePredictionInput{}
	fields := []struct {
		target *string
		value  any
	}{
		{&input.HistoricalCycleData, streams.Cycles},
		{&input.RecentSymptomData, streams.Symptoms},
		{&input.RecentMoodData, moods},
		{&input.RecentNutritionData, streams.Nutrition},
	}
	for _, field := range fields {
		encoded, err := encodeFlowField(field.value)
		if err != nil {
			return CyclePredictionInput{}, err
		}
		*field.target = encoded
	}
	return input, nil
}

func (service *InsightService) PredictCycle(ctx context.Context, userID string) (Insight, error) {
	input, err := service.CyclePredictionRequest(ctx, userID)
	if err != nil {
		return Insight{}, err
	}
	return service.invoke(ctx, flows.CyclePredictor, input)
}

// RecoveryRequest pairs the last week of workouts, symptoms and check-ins
// with the lowercase name of the current phase.
func (service *InsightService) RecoveryRequest(ctx context.Context, userID string) (RecoveryInput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RecoveryInput{}, ErrUserIDRequired
	}

	window := func() *StreamWindow {
		return &StreamWindow{Days: recoveryWindowDays}
	}
	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{
		Cycles:   &StreamWindow{Limit: 1},
		Symptoms: window(),
		Fitness:  window(),
		CheckIns: window(),
	})
	if streams.AllFailed() {
		return RecoveryInput{}, fmt.Errorf("%w: all %d streams failed", ErrInsightUnavailable, streams.Requested)
	}

	snapshot, err := encodeFlowField(RecoverySnapshot{
		Workouts: streams.Fitness,
		Symptoms: streams.Symptoms,
		CheckIns: streams.CheckIns,
	})
	if err != nil {
		return RecoveryInput{}, err
	}

	phase := InferPhase(CurrentCycle(streams.Cycles), service.now()).Phase
	return RecoveryInput{
		HealthSnapshot: snapshot,
		CyclePhase:     strings.ToLower(string(phase)),
	}, nil
}

func (service *InsightService) RecommendRecovery(ctx context.Context, userID string) (Insight, error) {
	input, err := service.RecoveryRequest(ctx, userID)
	if err != nil {
		return Insight{}, err
	}
	return service.invoke(ctx, flows.RecoveryAdvisor, input)
}

// LabAnalysisRequest sends up to twelve lab panels, newest first, with the
// last month of symptoms and a cycle summary. At least one panel is required.
func (service *InsightService) LabAnalysisRequest(ctx context.Context, userID string) (LabResultAnalysisInput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return LabResultAnalysisInput{}, ErrUserIDRequired
	}

	streams, err := service.fetchLabContext(ctx, userID)
	if err != nil {
		return LabResultAnalysisInput{}, err
	}
	if len(streams.LabResults) == 0 {
		return LabResultAnalysisInput{}, ErrNoLabResults
	}

	symptoms, err := encodeFlowField(streams.Symptoms)
	if err != nil {
		return LabResultAnalysisInput{}, err
	}
	return LabResultAnalysisInput{
		LabResults:     service.labPanels(streams.LabResults),
		SymptomSummary: symptoms,
		CycleSummary:   SummarizeCycles(BuildCycleHistory(streams.Cycles, service.location)),
	}, nil
}

func (service *InsightService) AnalyzeLabs(ctx context.Context, userID string) (Insight, error) {
	input, err := service.LabAnalysisRequest(ctx, userID)
	if err != nil {
		return Insight{}, err
	}
	return service.invoke(ctx, flows.LabResultAnalyzer, input)
}

// PcosSubtypeRequest works without lab results; the lab summary is then an
// empty list.
func (service *InsightService) PcosSubtypeRequest(ctx context.Context, userID string) (PcosSubtypeInput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PcosSubtypeInput{}, ErrUserIDRequired
	}

	streams, err := service.fetchLabContext(ctx, userID)
	if err != nil {
		return PcosSubtypeInput{}, err
	}

	symptoms, err := encodeFlowField(streams.Symptoms)
	if err != nil {
		return PcosSubtypeInput{}, err
	}
	labs, err := encodeFlowField(service.labPanels(streams.LabResults))
	if err != nil {
		return PcosSubtypeInput{}, err
	}
	return PcosSubtypeInput{
		SymptomSummary:   symptoms,
		CycleSummary:     SummarizeCycles(BuildCycleHistory(streams.Cycles, service.location)),
		LabResultSummary: labs,
	}, nil
}

func (service *InsightService) IdentifyPcosSubtype(ctx context.Context, userID string) (Insight, error) {
	input, err := service.PcosSubtypeRequest(ctx, userID)
	if err != nil {
		return Insight{}, err
	}
	return service.invoke(ctx, flows.PcosSubtypeIdentifier, input)
}

func (service *InsightService) fetchLabContext(ctx context.Context, userID string) (Streams, error) {
	streams := service.fetcher.Fetch(ctx, userID, FetchPlan{
		Cycles:     &StreamWindow{Limit: cyclePredictionHistory},
		Symptoms:   &StreamWindow{Days: labSymptomWindow},
		LabResults: &StreamWindow{Limit: labHistory},
	})
	if streams.AllFailed() {
		return Streams{}, fmt.Errorf("%w: all %d streams failed", ErrInsightUnavailable, streams.Requested)
	}
	return streams, nil
}

func (service *InsightService) labPanels(results []models.LabResult) []LabPanel {
	panels := make([]LabPanel, 0, len(results))
	for _, result := range results {
		markers := []models.LabMarker(result.Results)
		if markers == nil {
			markers = []models.LabMarker{}
		}
		panel := LabPanel{ID: result.ID, TestType: result.TestType, Results: markers}
		if !result.TestDate.IsZero() {
			panel.TestDate = DateAtLocation(result.TestDate, service.location).Format(time.DateOnly)
		}
		panels = append(panels, panel)
	}
	return panels
}

// SummarizeCycles renders cycle statistics as the one-line description the
// lab flows expect. Completed lengths spreading more than a week read as
// irregular.
func SummarizeCycles(history CycleHistory) string {
	if history.Cycles == 0 {
		return "No cycles logged."
	}
	logged := fmt.Sprintf("%d %s logged", history.Cycles, plural(history.Cycles, "cycle", "cycles"))
	completed := len(history.CompletedLengths)
	if completed == 0 {
		return logged + "; no completed cycles yet."
	}

	summary := fmt.Sprintf("%s; %d completed %s average %s days (median %d, last %d)",
		logged,
		completed,
		plural(completed, "cycle", "cycles"),
		strconv.FormatFloat(history.AverageCycleLength, 'f', -1, 64),
		history.MedianCycleLength,
		history.LastCycleLength,
	)
	if completed < 2 {
		return summary + "; regularity unknown."
	}

	shortest, longest := history.CompletedLengths[0], history.CompletedLengths[0]
	for _, length := range history.CompletedLengths[1:] {
		shortest = min(shortest, length)
		longest = max(longest, length)
	}
	spread := longest - shortest
	if spread <= regularCycleSpread {
		return fmt.Sprintf("%s; regular, lengths vary by %d days.", summary, spread)
	}
	return fmt.Sprintf("%s; irregular, lengths vary by %d days.", summary, spread)
}

func plural(count int, one string, many string) string {
	if count == 1 {
		return one
	}
	return many
}

type moodEntry struct {
	Date        string  `json:"date"`
	Mood        float64 `json:"mood"`
	EnergyLevel float64 `json:"energyLevel"`
}

func (service *InsightService) invoke(ctx context.Context, flowName string, input any) (Insight, error) {
	if service.invoker == nil {
		return Insight{}, flows.ErrNotConfigured
	}
	result, err := service.invoker.Invoke(ctx, flowName, input)
	if err != nil {
		return Insight{}, fmt.Errorf("run %s: %w", flowName, err)
	}
	return Insight{Flow: flowName, Input: input, Result: result}, nil
}

func encodeFlowField(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode flow input: %w", err)
	}
	return string(encoded), nil
}
