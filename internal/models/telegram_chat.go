package models

import "time"

// TelegramChat links a user to the chat their daily digest is sent to.
type TelegramChat struct {
	UserID   string    `gorm:"primaryKey" json:"-"`
	ChatID   string    `gorm:"not null" json:"chatId"`
	LinkedAt time.Time `gorm:"not null" json:"linkedAt"`
}

func (TelegramChat) TableName() string {
	return "telegram_chats"
}
