package models

import "time"

const (
	MinSymptomSeverity = 1
	MaxSymptomSeverity = 5
	DefaultBodyZone    = "General"
)

type SymptomLog struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"not null;index:idx_symptom_logs_user_ts,priority:1" json:"-"`
	SymptomType string    `gorm:"not null" json:"symptomType"`
	Severity    int       `gorm:"not null" json:"severity"`
	BodyZone    string    `gorm:"not null;default:General" json:"bodyZone"`
	Timestamp   time.Time `gorm:"not null;index:idx_symptom_logs_user_ts,priority:2" json:"timestamp"`
}

func (SymptomLog) TableName() string {
	return "symptom_logs"
}

func DefaultSymptomTypes() []string {
	return []string{
		"Fatigue",
		"Bloating",
		"Cramps",
		"Acne",
		"Mood Swings",
		"Headache",
		"Hair Loss",
		"Hirsutism",
		"Sugar Cravings",
		"Irregular Bleeding",
	}
}
