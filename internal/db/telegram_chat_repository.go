package db

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/bloom/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TelegramChatRepository struct {
	database *gorm.DB
}

func NewTelegramChatRepository(database *gorm.DB) *TelegramChatRepository {
	return &TelegramChatRepository{database: database}
}

// TelegramChatID reports the chat linked to the user, if any.
func (repo *TelegramChatRepository) TelegramChatID(ctx context.Context, userID string) (string, bool, error) {
	chat := models.TelegramChat{}
	err := repo.database.WithContext(ctx).Where("user_id = ?", userID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return chat.ChatID, chat.ChatID != "", nil
}

// LinkTelegramChat points the user's digests at chatID, replacing any earlier
// link.
func (repo *TelegramChatRepository) LinkTelegramChat(ctx context.Context, userID string, chatID string) error {
	chat := models.TelegramChat{UserID: userID, ChatID: chatID, LinkedAt: time.Now().UTC()}
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"chat_id", "linked_at"}),
	}).Create(&chat).Error
}

func (repo *TelegramChatRepository) UnlinkTelegramChat(ctx context.Context, userID string) error {
	return repo.database.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.TelegramChat{}).Error
}
