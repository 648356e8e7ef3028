package services

import (
	"strings"

	"github.com/terraincognita07/bloom/internal/models"
)

type RecurringSymptom struct {
	Name     string `json:"name"`
	BodyZone string `json:"bodyZone"`
	Count    int    `json:"count"`
}

// FindRecurring returns the symptom types logged more than once, in the order
// each type was first seen. Input is expected newest first, so the body zone
// reported for a type is the zone of its most recent entry.
func FindRecurring(symptoms []models.SymptomLog) []RecurringSymptom {
	counts := make(map[string]int, len(symptoms))
	zones := make(map[string]string, len(symptoms))
	order := make([]string, 0)

	for _, symptom := range symptoms {
		name := strings.TrimSpace(symptom.SymptomType)
		if name == "" {
			continue
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
			zones[name] = strings.TrimSpace(symptom.BodyZone)
		}
		counts[name]++
	}

	recurring := make([]RecurringSymptom, 0, len(order))
	for _, name := range order {
		if counts[name] <= 1 {
			continue
		}
		zone := zones[name]
		if zone == "" {
			zone = models.DefaultBodyZone
		}
		recurring = append(recurring, RecurringSymptom{Name: name, BodyZone: zone, Count: counts[name]})
	}
	return recurring
}

// LookupRecurring resolves a user-typed name to the recurring entry it refers
// to. An exact match wins over a case-insensitive one so "Bloating" and
// "bloating", which group separately, each resolve to themselves.
func LookupRecurring(recurring []RecurringSymptom, name string) (RecurringSymptom, bool) {
	name = strings.TrimSpace(name)
	for _, symptom := range recurring {
		if symptom.Name == name {
			return symptom, true
		}
	}
	for _, symptom := range recurring {
		if strings.EqualFold(symptom.Name, name) {
			return symptom, true
		}
	}
	return RecurringSymptom{}, false
}
