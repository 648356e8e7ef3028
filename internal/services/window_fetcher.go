package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
)

type Stream string

const (
	StreamCycles    Stream = "cycles"
	StreamSymptoms  Stream = "symptomLogs"
	StreamNutrition Stream = "nutritionLogs"
	StreamFitness   Stream = "fitnessActivities"
	StreamCheckIns  Stream = "dailyCheckIns"
	StreamLabs      Stream = "labResults"
)

// HealthStreamReader is the read side of the store. Every list is newest
// first; a non-positive limit means uncapped.
type HealthStreamReader interface {
	ListCycles(ctx context.Context, userID string, limit int) ([]models.Cycle, error)
	ListSymptoms(ctx context.Context, userID string, since time.Time, limit int) ([]models.SymptomLog, error)
	ListMeals(ctx context.Context, userID string, since time.Time, limit int) ([]models.NutritionLog, error)
	ListWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]models.FitnessActivity, error)
	ListCheckIns(ctx context.Context, userID string, since time.Time, limit int) ([]models.DailyCheckIn, error)
	ListLabResults(ctx context.Context, userID string, since time.Time, limit int) ([]models.LabResult, error)
}

// StreamWindow bounds one stream. Days <= 0 disables the time filter and
// Limit <= 0 disables the row cap. Cycles only honour Limit.
type StreamWindow struct {
	Days  int
	Limit int
}

// FetchPlan selects the streams to read. A nil window skips the stream.
type FetchPlan struct {
	Cycles     *StreamWindow
	Symptoms   *StreamWindow
	Nutrition  *StreamWindow
	Fitness    *StreamWindow
	CheckIns   *StreamWindow
	LabResults *StreamWindow
}

// UniformPlan reads the five logged streams over the same lookback window and
// cap. Lab results are only read by plans that ask for them.
func UniformPlan(lookbackDays int, perCollectionCap int) FetchPlan {
	window := func() *StreamWindow {
		return &StreamWindow{Days: lookbackDays, Limit: perCollectionCap}
	}
	return FetchPlan{
		Cycles:    &StreamWindow{Limit: perCollectionCap},
		Symptoms:  window(),
		Nutrition: window(),
		Fitness:   window(),
		CheckIns:  window(),
	}
}

type Streams struct {
	Cycles     []models.Cycle
	Symptoms   []models.SymptomLog
	Nutrition  []models.NutritionLog
	Fitness    []models.FitnessActivity
	CheckIns   []models.DailyCheckIn
	LabResults []models.LabResult

	Requested int
	Failed    []Stream
}

// AllFailed reports whether every requested stream failed to load.
func (streams Streams) AllFailed() bool {
	return streams.Requested > 0 && len(streams.Failed) == streams.Requested
}

type WindowFetcher struct {
	reader HealthStreamReader
	logger *slog.Logger
	now    func() time.Time
}

func NewWindowFetcher(reader HealthStreamReader, logger *slog.Logger) *WindowFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &WindowFetcher{reader: reader, logger: logger, now: time.Now}
}

// Fetch reads every planned stream concurrently and waits for all of them. A
// stream that fails resolves to an empty slice and is listed in Failed; the
// other streams are unaffected.
func (fetcher *WindowFetcher) Fetch(ctx context.Context, userID string, plan FetchPlan) Streams {
	now := fetcher.now()
	streams := Streams{}

	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
	)
	run := func(stream Stream, read func() error) {
		streams.Requested++
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := readStream(read)
			if err == nil {
				return
			}
			fetcher.logger.WarnContext(ctx, "health stream fetch failed",
				"stream", string(stream),
				"user_id", userID,
				"error", err,
			)
			failedMu.Lock()
			streams.Failed = append(streams.Failed, stream)
			failedMu.Unlock()
		}()
	}

	if plan.Cycles != nil {
		limit := plan.Cycles.Limit
		run(StreamCycles, func() error {
			rows, err := fetcher.reader.ListCycles(ctx, userID, limit)
			streams.Cycles = rows
			return err
		})
	}
	if plan.Symptoms != nil {
		since, limit := plan.Symptoms.bounds(now)
		run(StreamSymptoms, func() error {
			rows, err := fetcher.reader.ListSymptoms(ctx, userID, since, limit)
			streams.Symptoms = rows
			return err
		})
	}
	if plan.Nutrition != nil {
		since, limit := plan.Nutrition.bounds(now)
		run(StreamNutrition, func() error {
			rows, err := fetcher.reader.ListMeals(ctx, userID, since, limit)
			streams.Nutrition = rows
			return err
		})
	}
	if plan.Fitness != nil {
		since, limit := plan.Fitness.bounds(now)
		run(StreamFitness, func() error {
			rows, err := fetcher.reader.ListWorkouts(ctx, userID, since, limit)
			streams.Fitness = rows
			return err
		})
	}
	if plan.CheckIns != nil {
		since, limit := plan.CheckIns.bounds(now)
		run(StreamCheckIns, func() error {
			rows, err := fetcher.reader.ListCheckIns(ctx, userID, since, limit)
			streams.CheckIns = rows
			return err
		})
	}
	if plan.LabResults != nil {
		since, limit := plan.LabResults.bounds(now)
		run(StreamLabs, func() error {
			rows, err := fetcher.reader.ListLabResults(ctx, userID, since, limit)
			streams.LabResults = rows
			return err
		})
	}

	wg.Wait()
	streams.normalize()
	return streams
}

func (window StreamWindow) bounds(now time.Time) (time.Time, int) {
	if window.Days <= 0 {
		return time.Time{}, window.Limit
	}
	return now.AddDate(0, 0, -window.Days), window.Limit
}

func readStream(read func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("stream reader panicked: %v", recovered)
		}
	}()
	return read()
}

// normalize replaces the rows of failed or skipped streams with empty slices.
func (streams *Streams) normalize() {
	failed := make(map[Stream]bool, len(streams.Failed))
	for _, stream := range streams.Failed {
		failed[stream] = true
	}

	if streams.Cycles == nil || failed[StreamCycles] {
		streams.Cycles = []models.Cycle{}
	}
	if streams.Symptoms == nil || failed[StreamSymptoms] {
		streams.Symptoms = []models.SymptomLog{}
	}
	if streams.Nutrition == nil || failed[StreamNutrition] {
		streams.Nutrition = []models.NutritionLog{}
	}
	if streams.Fitness == nil || failed[StreamFitness] {
		streams.Fitness = []models.FitnessActivity{}
	}
	if streams.CheckIns == nil || failed[StreamCheckIns] {
		streams.CheckIns = []models.DailyCheckIn{}
	}
	if streams.LabResults == nil || failed[StreamLabs] {
		streams.LabResults = []models.LabResult{}
	}

	sort.Slice(streams.Failed, func(i, j int) bool {
		return streams.Failed[i] < streams.Failed[j]
	})
}
