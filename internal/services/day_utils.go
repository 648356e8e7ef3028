package services

import (
	"math"
	"time"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// CalendarDaysBetween counts whole calendar days from start to end in the
// given location. The result is negative when end falls before start.
func CalendarDaysBetween(start time.Time, end time.Time, location *time.Location) int {
	from := DateAtLocation(start, location)
	to := DateAtLocation(end, location)
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// ElapsedDaysBetween counts complete 24 hour periods from start to end,
// truncating toward zero. Time of day matters: 23 hours is zero days.
func ElapsedDaysBetween(start time.Time, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(value float64) float64 {
	return math.Floor(value + 0.5)
}

func clampFloat(value float64, low float64, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
