package models

import "time"

type FitnessActivity struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"not null;index:idx_fitness_activities_user_completed,priority:1" json:"-"`
	ActivityType string    `gorm:"not null" json:"activityType"`
	Duration     float64   `gorm:"not null;default:0" json:"duration"`
	CompletedAt  time.Time `gorm:"not null;index:idx_fitness_activities_user_completed,priority:2" json:"completedAt"`
}

func (FitnessActivity) TableName() string {
	return "fitness_activities"
}
