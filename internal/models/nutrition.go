package models

import (
	"time"

	"gorm.io/datatypes"
)

const MaxPCOSScore = 100

// NutritionLog is a logged meal with its PCOS-friendliness score. FoodItems is
// kept as raw JSON because its shape is owned by the meal analysis flow.
type NutritionLog struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"not null;index:idx_nutrition_logs_user_logged,priority:1" json:"-"`
	MealName  string         `gorm:"not null" json:"mealName"`
	PCOSScore float64        `gorm:"column:pcos_score;not null;default:0" json:"pcosScore"`
	FoodItems datatypes.JSON `json:"foodItems"`
	LoggedAt  time.Time      `gorm:"not null;index:idx_nutrition_logs_user_logged,priority:2" json:"loggedAt"`
}

func (NutritionLog) TableName() string {
	return "nutrition_logs"
}
