package services

import (
	"time"

	"github.com/terraincognita07/bloom/internal/models"
)

type CyclePhase string

const (
	PhaseMenstrual  CyclePhase = "Menstrual"
	PhaseFollicular CyclePhase = "Follicular"
	PhaseOvulation  CyclePhase = "Ovulation"
	PhaseLuteal     CyclePhase = "Luteal"
	PhaseUnknown    CyclePhase = "Unknown"
)

const (
	menstrualPhaseDays   = 5
	lutealPhaseDays      = 14
	follicularTailDays   = 3
	ovulationWindowAfter = 2
)

type PhaseResult struct {
	CycleDay *int       `json:"day"`
	Phase    CyclePhase `json:"phase"`
}

type PhaseBoundaries struct {
	CycleLength   int `json:"cycleLength"`
	OvulationDay  int `json:"ovulationDay"`
	FollicularEnd int `json:"follicularEnd"`
	OvulationEnd  int `json:"ovulationEnd"`
}

// PhaseBoundariesFor derives the last day of each phase band from the
// configured cycle length. Unset or non-positive lengths use the 28 day default.
// The follicular band never ends before day 5 so very short lengths still
// leave the menstrual band intact.
func PhaseBoundariesFor(length *int) PhaseBoundaries {
	cycleLength := models.DefaultCycleLength
	if length != nil && *length > 0 {
		cycleLength = *length
	}

	ovulationDay := int(roundHalfUp(float64(cycleLength - lutealPhaseDays)))
	follicularEnd := ovulationDay - follicularTailDays
	if follicularEnd <= menstrualPhaseDays {
		follicularEnd = menstrualPhaseDays
	}

	return PhaseBoundaries{
		CycleLength:   cycleLength,
		OvulationDay:  ovulationDay,
		FollicularEnd: follicularEnd,
		OvulationEnd:  ovulationDay + ovulationWindowAfter,
	}
}

// InferPhase places the reference date inside the given cycle. Only an open
// cycle yields a phase; closed or missing cycles are Unknown. A reference date
// before the start clamps to day 1. Days count elapsed 24 hour periods since
// the start instant, so a cycle that began at 21:00 is still on day 1 the
// next morning. The day has no upper bound: an overdue
// open cycle stays Luteal and never wraps into a predicted next cycle.
func InferPhase(cycle *models.Cycle, reference time.Time) PhaseResult {
	if cycle == nil || cycle.StartDate.IsZero() || !cycle.IsOpen() {
		return PhaseResult{Phase: PhaseUnknown}
	}

	day := ElapsedDaysBetween(cycle.StartDate, reference) + 1
	if day <= 0 {
		day = 1
		return PhaseResult{CycleDay: &day, Phase: PhaseMenstrual}
	}

	return PhaseResult{CycleDay: &day, Phase: PhaseForDay(day, PhaseBoundariesFor(cycle.Length))}
}

func PhaseForDay(day int, bounds PhaseBoundaries) CyclePhase {
	switch {
	case day <= menstrualPhaseDays:
		return PhaseMenstrual
	case day <= bounds.FollicularEnd:
		return PhaseFollicular
	case day <= bounds.OvulationEnd:
		return PhaseOvulation
	default:
		return PhaseLuteal
	}
}

// CurrentCycle returns the newest cycle of a start-date-descending list.
func CurrentCycle(cycles []models.Cycle) *models.Cycle {
	if len(cycles) == 0 {
		return nil
	}
	current := cycles[0]
	return &current
}
