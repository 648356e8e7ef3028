package api

import (
	"context"
	"net/http"
	"testing"
)

func TestTelegramChatLinkIsScopedToCaller(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	response := app.do(t, http.MethodPut, "/api/notifications/telegram", "user-1", map[string]any{"chatId": "@someone"})
	expectStatus(t, response, http.StatusUnprocessableEntity)

	response = app.do(t, http.MethodPut, "/api/notifications/telegram", "user-1", map[string]any{"chatId": " 5150 "})
	expectStatus(t, response, http.StatusOK)
	expectStatus(t, app.do(t, http.MethodPut, "/api/notifications/telegram", "user-2", map[string]any{"chatId": "-6060"}), http.StatusOK)

	ctx := context.Background()
	for userID, want := range map[string]string{"user-1": "5150", "user-2": "-6060"} {
		chatID, linked, err := app.repos.TelegramChats.TelegramChatID(ctx, userID)
		if err != nil || !linked || chatID != want {
			t.Fatalf("chat for %s = %q, %v, %v; want %q", userID, chatID, linked, err, want)
		}
	}

	expectStatus(t, app.do(t, http.MethodDelete, "/api/notifications/telegram", "user-1", nil), http.StatusNoContent)
	if _, linked, _ := app.repos.TelegramChats.TelegramChatID(ctx, "user-1"); linked {
		t.Fatal("expected user-1 to be unlinked")
	}
	if _, linked, _ := app.repos.TelegramChats.TelegramChatID(ctx, "user-2"); !linked {
		t.Fatal("expected user-2 to stay linked")
	}
}
