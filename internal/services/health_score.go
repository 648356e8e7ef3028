package services

import (
	"github.com/terraincognita07/bloom/internal/models"
)

const (
	checkInWeight   = 0.30
	symptomWeight   = 0.40
	nutritionWeight = 0.15
	fitnessWeight   = 0.15

	defaultCheckInScore   = 70.0
	defaultNutritionScore = 75.0

	// symptomLoadCeiling is the cumulative severity treated as a full weekly
	// load: five symptoms at severity 5 over the window.
	symptomLoadCeiling = 35.0
	saturatingWorkouts = 4.0

	maxScore = 100
)

type Signal string

const (
	SignalCheckIns  Signal = "checkIns"
	SignalSymptoms  Signal = "symptoms"
	SignalNutrition Signal = "nutrition"
	SignalFitness   Signal = "fitness"
)

type SubScore struct {
	Value     float64 `json:"value"`
	Weight    float64 `json:"weight"`
	Samples   int     `json:"samples"`
	Defaulted bool    `json:"defaulted"`
}

// ScoreBreakdown is the composite Health Score with its inputs. Completeness
// is the share of the four signals that had at least one logged entry, which
// lets callers tell a low score from an empty window.
type ScoreBreakdown struct {
	Score          int      `json:"score"`
	CheckIn        SubScore `json:"checkIn"`
	Symptom        SubScore `json:"symptom"`
	Nutrition      SubScore `json:"nutrition"`
	Fitness        SubScore `json:"fitness"`
	Completeness   float64  `json:"completeness"`
	MissingSignals []Signal `json:"missingSignals"`
}

// HealthScore returns the 0-100 composite score for the trailing window.
func HealthScore(checkIns []models.DailyCheckIn, symptoms []models.SymptomLog, meals []models.NutritionLog, workouts []models.FitnessActivity) int {
	return ScoreHealth(checkIns, symptoms, meals, workouts).Score
}

func ScoreHealth(checkIns []models.DailyCheckIn, symptoms []models.SymptomLog, meals []models.NutritionLog, workouts []models.FitnessActivity) ScoreBreakdown {
	breakdown := ScoreBreakdown{
		CheckIn:        checkInSubScore(checkIns),
		Symptom:        symptomSubScore(symptoms),
		Nutrition:      nutritionSubScore(meals),
		Fitness:        fitnessSubScore(workouts),
		MissingSignals: make([]Signal, 0, 4),
	}

	weighted := breakdown.CheckIn.Value*breakdown.CheckIn.Weight +
		breakdown.Symptom.Value*breakdown.Symptom.Weight +
		breakdown.Nutrition.Value*breakdown.Nutrition.Weight +
		breakdown.Fitness.Value*breakdown.Fitness.Weight
	breakdown.Score = int(clampFloat(roundHalfUp(weighted), 0, maxScore))

	signals := []struct {
		signal Signal
		score  SubScore
	}{
		{SignalCheckIns, breakdown.CheckIn},
		{SignalSymptoms, breakdown.Symptom},
		{SignalNutrition, breakdown.Nutrition},
		{SignalFitness, breakdown.Fitness},
	}
	present := 0
	for _, item := range signals {
		if item.score.Samples > 0 {
			present++
			continue
		}
		breakdown.MissingSignals = append(breakdown.MissingSignals, item.signal)
	}
	breakdown.Completeness = float64(present) / float64(len(signals))

	return breakdown
}

func checkInSubScore(checkIns []models.DailyCheckIn) SubScore {
	if len(checkIns) == 0 {
		return SubScore{Value: defaultCheckInScore, Weight: checkInWeight, Defaulted: true}
	}

	var total float64
	for _, checkIn := range checkIns {
		total += sanitizeLevel(checkIn.Mood) + sanitizeLevel(checkIn.EnergyLevel)
	}
	maxTotal := float64(len(checkIns) * 2 * models.MaxCheckInLevel)
	return SubScore{
		Value:   clampFloat(total/maxTotal*100, 0, maxScore),
		Weight:  checkInWeight,
		Samples: len(checkIns),
	}
}

// symptomSubScore is always backed by data: an empty window means no symptom
// load, which scores 100.
func symptomSubScore(symptoms []models.SymptomLog) SubScore {
	var load float64
	for _, symptom := range symptoms {
		load += sanitizeSeverity(symptom.Severity)
	}
	impact := load / symptomLoadCeiling * 100
	if impact > maxScore {
		impact = maxScore
	}
	return SubScore{
		Value:   maxScore - impact,
		Weight:  symptomWeight,
		Samples: len(symptoms),
	}
}

func nutritionSubScore(meals []models.NutritionLog) SubScore {
	if len(meals) == 0 {
		return SubScore{Value: defaultNutritionScore, Weight: nutritionWeight, Defaulted: true}
	}

	var total float64
	for _, meal := range meals {
		total += sanitizePCOSScore(meal.PCOSScore)
	}
	return SubScore{
		Value:   total / float64(len(meals)),
		Weight:  nutritionWeight,
		Samples: len(meals),
	}
}

// fitnessSubScore has no default: zero workouts is a real signal and scores 0.
func fitnessSubScore(workouts []models.FitnessActivity) SubScore {
	value := float64(len(workouts)) / saturatingWorkouts * 100
	if value > maxScore {
		value = maxScore
	}
	return SubScore{
		Value:   value,
		Weight:  fitnessWeight,
		Samples: len(workouts),
	}
}

func sanitizeLevel(value float64) float64 {
	if !isFinite(value) || value < 0 {
		return 0
	}
	return clampFloat(value, 0, models.MaxCheckInLevel)
}

func sanitizeSeverity(value int) float64 {
	if value < 0 {
		return 0
	}
	if value > models.MaxSymptomSeverity {
		return models.MaxSymptomSeverity
	}
	return float64(value)
}

func sanitizePCOSScore(value float64) float64 {
	if !isFinite(value) || value < 0 {
		return 0
	}
	return clampFloat(value, 0, models.MaxPCOSScore)
}
