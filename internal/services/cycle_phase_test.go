package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
)

func intPtr(value int) *int {
	return &value
}

func openCycle(start time.Time, length *int) *models.Cycle {
	return &models.Cycle{ID: "c-1", UserID: "u-1", StartDate: start, Length: length}
}

func TestInferPhase(t *testing.T) {
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		cycle     *models.Cycle
		reference time.Time
		wantDay   int
		wantPhase CyclePhase
	}{
		{name: "start day", cycle: openCycle(start, intPtr(28)), reference: start, wantDay: 1, wantPhase: PhaseMenstrual},
		{name: "last menstrual day", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, 4), wantDay: 5, wantPhase: PhaseMenstrual},
		{name: "follicular", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, 8), wantDay: 9, wantPhase: PhaseFollicular},
		{name: "ovulation day", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, 13), wantDay: 14, wantPhase: PhaseOvulation},
		{name: "ovulation window tail", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, 15), wantDay: 16, wantPhase: PhaseOvulation},
		{name: "day 21 luteal", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, 20), wantDay: 21, wantPhase: PhaseLuteal},
		{name: "overdue stays luteal", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, 44), wantDay: 45, wantPhase: PhaseLuteal},
		{name: "missing length defaults to 28", cycle: openCycle(start, nil), reference: start.AddDate(0, 0, 12), wantDay: 13, wantPhase: PhaseOvulation},
		{name: "reference before start clamps", cycle: openCycle(start, intPtr(28)), reference: start.AddDate(0, 0, -3), wantDay: 1, wantPhase: PhaseMenstrual},
		{name: "long cycle", cycle: openCycle(start, intPtr(35)), reference: start.AddDate(0, 0, 17), wantDay: 18, wantPhase: PhaseFollicular},
		{name: "under 24 hours stays on day 1", cycle: openCycle(start.Add(23*time.Hour), intPtr(28)), reference: start.AddDate(0, 0, 1).Add(time.Hour), wantDay: 1, wantPhase: PhaseMenstrual},
		{name: "evening start counts elapsed days", cycle: openCycle(start.Add(21*time.Hour), intPtr(28)), reference: start.AddDate(0, 0, 5).Add(9 * time.Hour), wantDay: 5, wantPhase: PhaseMenstrual},
		{name: "evening start reaches follicular on day 6", cycle: openCycle(start.Add(21*time.Hour), intPtr(28)), reference: start.AddDate(0, 0, 6).Add(9 * time.Hour), wantDay: 6, wantPhase: PhaseFollicular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferPhase(tt.cycle, tt.reference)
			if got.CycleDay == nil {
				t.Fatalf("expected a cycle day, got nil with phase %s", got.Phase)
			}
			if *got.CycleDay != tt.wantDay || got.Phase != tt.wantPhase {
				t.Fatalf("InferPhase() = day %d %s, want day %d %s", *got.CycleDay, got.Phase, tt.wantDay, tt.wantPhase)
			}
		})
	}
}

func TestInferPhaseUnknown(t *testing.T) {
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 27)

	tests := []struct {
		name  string
		cycle *models.Cycle
	}{
		{name: "no cycle", cycle: nil},
		{name: "closed cycle", cycle: &models.Cycle{StartDate: start, EndDate: &end}},
		{name: "missing start", cycle: &models.Cycle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferPhase(tt.cycle, start.AddDate(0, 0, 3))
			if got.Phase != PhaseUnknown || got.CycleDay != nil {
				t.Fatalf("expected Unknown with no day, got %#v", got)
			}
		})
	}
}

func TestInferPhaseIgnoresZoneOfTimestamps(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, tokyo)
	reference := time.Date(2026, time.April, 1, 16, 0, 0, 0, time.UTC)

	got := InferPhase(openCycle(start, intPtr(28)), reference)
	if got.CycleDay == nil || *got.CycleDay != 2 {
		t.Fatalf("expected day 2 after 25h elapsed, got %#v", got)
	}

	got = InferPhase(openCycle(start, intPtr(28)), reference.Add(-2*time.Hour))
	if got.CycleDay == nil || *got.CycleDay != 1 {
		t.Fatalf("expected day 1 after 23h elapsed, got %#v", got)
	}
}

func TestPhaseBoundariesFor(t *testing.T) {
	tests := []struct {
		name   string
		length *int
		want   PhaseBoundaries
	}{
		{name: "default", length: nil, want: PhaseBoundaries{CycleLength: 28, OvulationDay: 14, FollicularEnd: 11, OvulationEnd: 16}},
		{name: "zero falls back", length: intPtr(0), want: PhaseBoundaries{CycleLength: 28, OvulationDay: 14, FollicularEnd: 11, OvulationEnd: 16}},
		{name: "negative falls back", length: intPtr(-4), want: PhaseBoundaries{CycleLength: 28, OvulationDay: 14, FollicularEnd: 11, OvulationEnd: 16}},
		{name: "long cycle", length: intPtr(35), want: PhaseBoundaries{CycleLength: 35, OvulationDay: 21, FollicularEnd: 18, OvulationEnd: 23}},
		{name: "short cycle keeps menstrual band", length: intPtr(15), want: PhaseBoundaries{CycleLength: 15, OvulationDay: 1, FollicularEnd: 5, OvulationEnd: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseBoundariesFor(tt.length); got != tt.want {
				t.Fatalf("PhaseBoundariesFor() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestShortCycleNeverEntersFollicularEarly(t *testing.T) {
	bounds := PhaseBoundariesFor(intPtr(15))
	for day := 1; day <= 5; day++ {
		if phase := PhaseForDay(day, bounds); phase != PhaseMenstrual {
			t.Fatalf("day %d: expected Menstrual, got %s", day, phase)
		}
	}
	if phase := PhaseForDay(6, bounds); phase != PhaseLuteal {
		t.Fatalf("day 6: expected Luteal for a 15 day cycle, got %s", phase)
	}
}

func TestCurrentCycle(t *testing.T) {
	if CurrentCycle(nil) != nil {
		t.Fatal("expected nil for empty history")
	}

	cycles := []models.Cycle{{ID: "newest"}, {ID: "older"}}
	current := CurrentCycle(cycles)
	if current == nil || current.ID != "newest" {
		t.Fatalf("expected newest cycle, got %#v", current)
	}
	current.ID = "changed"
	if cycles[0].ID != "newest" {
		t.Fatal("expected CurrentCycle to return a copy")
	}
}
