package models

import (
	"time"

	"gorm.io/datatypes"
)

// LabMarker is one measured value of a lab panel. Values stay text because
// reports mix plain numbers with bounds such as "<0.5".
type LabMarker struct {
	Marker      string `json:"marker"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	NormalRange string `json:"normalRange,omitempty"`
}

type LabResult struct {
	ID       string                         `gorm:"primaryKey" json:"id"`
	UserID   string                         `gorm:"not null;index:idx_lab_results_user_tested,priority:1" json:"-"`
	TestType string                         `gorm:"not null" json:"testType"`
	TestDate time.Time                      `gorm:"not null;index:idx_lab_results_user_tested,priority:2" json:"testDate"`
	Results  datatypes.JSONSlice[LabMarker] `gorm:"not null" json:"results"`
}

func (LabResult) TableName() string {
	return "lab_results"
}
