package models

import "time"

const DefaultCycleLength = 28

// Cycle is one logged menstrual cycle. A nil EndDate marks the cycle as open.
// Length carries the user's historical average cycle length in days when known.
type Cycle struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"not null;index:idx_cycles_user_start,priority:1" json:"-"`
	StartDate time.Time  `gorm:"not null;index:idx_cycles_user_start,priority:2" json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Length    *int       `json:"length"`
	CreatedAt time.Time  `json:"-"`
}

func (Cycle) TableName() string {
	return "cycles"
}

func (cycle Cycle) IsOpen() bool {
	return cycle.EndDate == nil
}
