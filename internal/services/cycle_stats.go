package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
)

// CycleHistory summarises the spacing of the fetched cycles. Lengths are
// measured start to next start in calendar days, so the newest cycle never
// contributes one.
type CycleHistory struct {
	Cycles             int     `json:"cycles"`
	CompletedLengths   []int   `json:"completedLengths"`
	AverageCycleLength float64 `json:"averageCycleLength"`
	MedianCycleLength  int     `json:"medianCycleLength"`
	LastCycleLength    int     `json:"lastCycleLength"`
}

func BuildCycleHistory(cycles []models.Cycle, location *time.Location) CycleHistory {
	starts := make([]time.Time, 0, len(cycles))
	for _, cycle := range cycles {
		if cycle.StartDate.IsZero() {
			continue
		}
		starts = append(starts, DateAtLocation(cycle.StartDate, location))
	}
	sort.Slice(starts, func(i, j int) bool {
		return starts[i].Before(starts[j])
	})

	lengths := cycleLengths(starts, location)
	history := CycleHistory{
		Cycles:           len(starts),
		CompletedLengths: lengths,
	}
	if len(lengths) == 0 {
		history.CompletedLengths = []int{}
		return history
	}
	history.AverageCycleLength = roundHalfUp(averageInts(lengths)*10) / 10
	history.MedianCycleLength = medianInt(lengths)
	history.LastCycleLength = lengths[len(lengths)-1]
	return history
}

// cycleLengths skips duplicate starts on the same calendar day.
func cycleLengths(starts []time.Time, location *time.Location) []int {
	if len(starts) < 2 {
		return nil
	}

	lengths := make([]int, 0, len(starts)-1)
	for i := 1; i < len(starts); i++ {
		days := CalendarDaysBetween(starts[i-1], starts[i], location)
		if days <= 0 {
			continue
		}
		lengths = append(lengths, days)
	}
	return lengths
}

func averageInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var total int
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]int, 0, len(values))
	sorted = append(sorted, values...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int(roundHalfUp(float64(sorted[mid-1]+sorted[mid]) / 2))
}
