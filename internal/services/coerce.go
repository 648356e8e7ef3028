package services

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/datatypes"
)

// Document is a loosely typed stored record. Any field may be missing or hold
// an unexpected type; the From*Document helpers coerce each field or fall back
// to its zero value so that downstream calculations stay total.
type Document = map[string]any

var documentTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func CycleFromDocument(doc Document) models.Cycle {
	cycle := models.Cycle{
		ID:     documentID(doc),
		UserID: CoerceString(doc["userId"]),
	}
	if start, ok := CoerceTime(doc["startDate"]); ok {
		cycle.StartDate = start
	}
	if end, ok := CoerceTime(doc["endDate"]); ok {
		cycle.EndDate = &end
	}
	if length, ok := CoerceFloat(doc["length"]); ok && length > 0 {
		rounded := int(roundHalfUp(length))
		cycle.Length = &rounded
	}
	return cycle
}

func SymptomFromDocument(doc Document) models.SymptomLog {
	entry := models.SymptomLog{
		ID:          documentID(doc),
		UserID:      CoerceString(doc["userId"]),
		SymptomType: CoerceString(doc["symptomType"]),
		BodyZone:    CoerceString(doc["bodyZone"]),
	}
	if severity, ok := CoerceFloat(doc["severity"]); ok && severity > 0 {
		entry.Severity = int(roundHalfUp(severity))
	}
	if timestamp, ok := CoerceTime(doc["timestamp"]); ok {
		entry.Timestamp = timestamp
	}
	return entry
}

func MealFromDocument(doc Document) models.NutritionLog {
	entry := models.NutritionLog{
		ID:       documentID(doc),
		UserID:   CoerceString(doc["userId"]),
		MealName: CoerceString(doc["mealName"]),
	}
	if score, ok := CoerceFloat(doc["pcosScore"]); ok {
		entry.PCOSScore = score
	}
	if items, ok := doc["foodItems"]; ok && items != nil {
		if raw, err := json.Marshal(items); err == nil {
			entry.FoodItems = raw
		}
	}
	if loggedAt, ok := CoerceTime(doc["loggedAt"]); ok {
		entry.LoggedAt = loggedAt
	}
	return entry
}

func WorkoutFromDocument(doc Document) models.FitnessActivity {
	entry := models.FitnessActivity{
		ID:           documentID(doc),
		UserID:       CoerceString(doc["userId"]),
		ActivityType: CoerceString(doc["activityType"]),
	}
	if duration, ok := CoerceFloat(doc["duration"]); ok && duration > 0 {
		entry.Duration = duration
	}
	if completedAt, ok := CoerceTime(doc["completedAt"]); ok {
		entry.CompletedAt = completedAt
	}
	return entry
}

func CheckInFromDocument(doc Document) models.DailyCheckIn {
	entry := models.DailyCheckIn{
		ID:     documentID(doc),
		UserID: CoerceString(doc["userId"]),
	}
	if mood, ok := CoerceFloat(doc["mood"]); ok {
		entry.Mood = mood
	}
	if energy, ok := CoerceFloat(doc["energyLevel"]); ok {
		entry.EnergyLevel = energy
	}
	if date, ok := CoerceTime(doc["date"]); ok {
		entry.Date = date
	}
	return entry
}

// LabResultFromDocument keeps only markers that carry a name. Marker values
// may be stored as numbers or text and always come back as text.
func LabResultFromDocument(doc Document) models.LabResult {
	entry := models.LabResult{
		ID:       documentID(doc),
		UserID:   CoerceString(doc["userId"]),
		TestType: CoerceString(doc["testType"]),
		Results:  datatypes.NewJSONSlice([]models.LabMarker{}),
	}
	if testDate, ok := CoerceTime(doc["testDate"]); ok {
		entry.TestDate = testDate
	}

	reflected := reflect.ValueOf(doc["results"])
	if reflected.Kind() != reflect.Slice && reflected.Kind() != reflect.Array {
		return entry
	}
	for index := 0; index < reflected.Len(); index++ {
		fields, ok := asStringMap(reflected.Index(index).Interface())
		if !ok {
			continue
		}
		marker := models.LabMarker{
			Marker:      CoerceString(fields["marker"]),
			Value:       coerceText(fields["value"]),
			Unit:        CoerceString(fields["unit"]),
			NormalRange: coerceText(fields["normalRange"]),
		}
		if marker.Marker == "" {
			continue
		}
		entry.Results = append(entry.Results, marker)
	}
	return entry
}

func documentID(doc Document) string {
	if id := CoerceString(doc["id"]); id != "" {
		return id
	}
	return CoerceString(doc["_id"])
}

func CoerceString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case interface{ Hex() string }:
		return typed.Hex()
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return ""
	}
}

// coerceText is CoerceString that also renders numbers.
func coerceText(value any) string {
	if text := CoerceString(value); text != "" {
		return text
	}
	if number, ok := CoerceFloat(value); ok {
		return strconv.FormatFloat(number, 'f', -1, 64)
	}
	return ""
}

// CoerceFloat accepts any numeric kind or a numeric string. NaN and infinities
// are rejected.
func CoerceFloat(value any) (float64, bool) {
	var result float64
	switch typed := value.(type) {
	case nil:
		return 0, false
	case bool:
		return 0, false
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		result = parsed
	default:
		reflected := reflect.ValueOf(value)
		switch reflected.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			result = float64(reflected.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			result = float64(reflected.Uint())
		case reflect.Float32, reflect.Float64:
			result = reflected.Float()
		default:
			return 0, false
		}
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, false
	}
	return result, true
}

// CoerceTime accepts time values, driver date types exposing Time(), date
// strings, Unix seconds or milliseconds, and {seconds, nanoseconds} maps as
// exported by document stores.
func CoerceTime(value any) (time.Time, bool) {
	switch typed := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return typed, !typed.IsZero()
	case *time.Time:
		if typed == nil || typed.IsZero() {
			return time.Time{}, false
		}
		return *typed, true
	case interface{ Time() time.Time }:
		converted := typed.Time()
		return converted, !converted.IsZero()
	case string:
		trimmed := strings.TrimSpace(typed)
		for _, layout := range documentTimeLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}

	if fields, ok := asStringMap(value); ok {
		return timeFromSecondsMap(fields)
	}

	number, ok := CoerceFloat(value)
	if !ok || number <= 0 {
		return time.Time{}, false
	}
	if number >= 1e12 {
		return time.UnixMilli(int64(number)).UTC(), true
	}
	return time.Unix(int64(number), 0).UTC(), true
}

func timeFromSecondsMap(fields map[string]any) (time.Time, bool) {
	seconds, ok := CoerceFloat(firstPresent(fields, "seconds", "_seconds"))
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := CoerceFloat(firstPresent(fields, "nanoseconds", "_nanoseconds"))
	return time.Unix(int64(seconds), int64(nanos)).UTC(), true
}

func firstPresent(fields map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := fields[key]; ok {
			return value
		}
	}
	return nil
}

func asStringMap(value any) (map[string]any, bool) {
	reflected := reflect.ValueOf(value)
	if reflected.Kind() != reflect.Map || reflected.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	result := make(map[string]any, reflected.Len())
	iter := reflected.MapRange()
	for iter.Next() {
		result[iter.Key().String()] = iter.Value().Interface()
	}
	return result, true
}
