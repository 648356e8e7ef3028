package models

import "time"

const MaxCheckInLevel = 5

// DailyCheckIn holds the self-reported mood and energy for one calendar day.
type DailyCheckIn struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:uidx_daily_check_ins_user_date,priority:1" json:"-"`
	Date        time.Time `gorm:"not null;uniqueIndex:uidx_daily_check_ins_user_date,priority:2" json:"date"`
	Mood        float64   `gorm:"not null;default:0" json:"mood"`
	EnergyLevel float64   `gorm:"not null;default:0" json:"energyLevel"`
}

func (DailyCheckIn) TableName() string {
	return "daily_check_ins"
}
