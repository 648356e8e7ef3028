package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloom/internal/services"
)

func (handler *Handler) LinkTelegramChat(c *fiber.Ctx) error {
	if handler.chats == nil {
		return writesUnsupported(c)
	}
	payload := telegramChatPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	chatID, err := services.NormalizeChatID(payload.ChatID)
	if err != nil {
		return handler.serviceError(c, err)
	}

	if err := handler.chats.LinkTelegramChat(c.UserContext(), currentUserID(c), chatID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to link chat")
	}
	return c.JSON(fiber.Map{"chatId": chatID})
}

func (handler *Handler) UnlinkTelegramChat(c *fiber.Ctx) error {
	if handler.chats == nil {
		return writesUnsupported(c)
	}
	if err := handler.chats.UnlinkTelegramChat(c.UserContext(), currentUserID(c)); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to unlink chat")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
