package api

import "encoding/json"

type cyclePayload struct {
	StartDate string `json:"startDate"`
	Length    *int   `json:"length"`
}

type endCyclePayload struct {
	EndDate string `json:"endDate"`
}

type symptomPayload struct {
	SymptomType string `json:"symptomType"`
	Severity    int    `json:"severity"`
	BodyZone    string `json:"bodyZone"`
	Timestamp   string `json:"timestamp"`
}

type mealPayload struct {
	MealName  string          `json:"mealName"`
	PCOSScore float64         `json:"pcosScore"`
	FoodItems json.RawMessage `json:"foodItems"`
	LoggedAt  string          `json:"loggedAt"`
}

type workoutPayload struct {
	ActivityType string  `json:"activityType"`
	Duration     float64 `json:"duration"`
	CompletedAt  string  `json:"completedAt"`
}

type checkInPayload struct {
	Mood        float64 `json:"mood"`
	EnergyLevel float64 `json:"energyLevel"`
}

type labResultPayload struct {
	TestType string             `json:"testType"`
	TestDate string             `json:"testDate"`
	Results  []labMarkerPayload `json:"results"`
}

type labMarkerPayload struct {
	Marker      string `json:"marker"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	NormalRange string `json:"normalRange"`
}

type telegramChatPayload struct {
	ChatID string `json:"chatId"`
}

type symptomForecastPayload struct {
	TargetSymptom string `json:"targetSymptom"`
}
