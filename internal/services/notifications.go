package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LogNotifier writes digests as structured log lines.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (notifier *LogNotifier) Notify(ctx context.Context, digest Digest) error {
	day := 0
	if digest.Cycle.CycleDay != nil {
		day = *digest.Cycle.CycleDay
	}
	notifier.logger.InfoContext(ctx, "daily digest",
		"user_id", digest.UserID,
		"date", digest.Date,
		"cycle_day", day,
		"phase", string(digest.Cycle.Phase),
		"health_score", digest.HealthScore,
		"recurring_symptoms", len(digest.Recurring),
		"partial", digest.PartialData,
	)
	return nil
}

var ErrInvalidChatID = errors.New("telegram chat id must be a non-zero integer")

// ChatLinker stores which Telegram chat receives a user's digests.
type ChatLinker interface {
	LinkTelegramChat(ctx context.Context, userID string, chatID string) error
	UnlinkTelegramChat(ctx context.Context, userID string) error
}

// NormalizeChatID accepts user, group and channel ids, which are signed
// integers in the Bot API.
func NormalizeChatID(raw string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return "", ErrInvalidChatID
	}
	return strconv.FormatInt(id, 10), nil
}

// ChatDirectory resolves the Telegram chat a user linked for digests.
type ChatDirectory interface {
	TelegramChatID(ctx context.Context, userID string) (string, bool, error)
}

// TelegramNotifier posts each digest to the chat its user linked through the
// Bot API. Users without a linked chat go to fallback instead.
type TelegramNotifier struct {
	endpoint string
	chats    ChatDirectory
	fallback Notifier
	client   *http.Client
}

func NewTelegramNotifier(botToken string, chats ChatDirectory, fallback Notifier) *TelegramNotifier {
	return &TelegramNotifier{
		endpoint: fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", botToken),
		chats:    chats,
		fallback: fallback,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

func (notifier *TelegramNotifier) Notify(ctx context.Context, digest Digest) error {
	chatID, linked, err := notifier.chats.TelegramChatID(ctx, digest.UserID)
	if err != nil {
		return fmt.Errorf("resolve telegram chat: %w", err)
	}
	if !linked {
		if notifier.fallback == nil {
			return nil
		}
		return notifier.fallback.Notify(ctx, digest)
	}

	values := url.Values{}
	values.Set("chat_id", chatID)
	values.Set("text", FormatDigest(digest))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notifier.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := notifier.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func FormatDigest(digest Digest) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Bloom digest for %s\n", digest.Date)
	if digest.Cycle.CycleDay != nil {
		fmt.Fprintf(&builder, "Cycle day %d, %s phase\n", *digest.Cycle.CycleDay, digest.Cycle.Phase)
	} else {
		builder.WriteString("No open cycle logged\n")
	}
	fmt.Fprintf(&builder, "Health score: %d/100", digest.HealthScore)

	if len(digest.Recurring) > 0 {
		names := make([]string, 0, len(digest.Recurring))
		for _, symptom := range digest.Recurring {
			names = append(names, fmt.Sprintf("%s x%d", symptom.Name, symptom.Count))
		}
		fmt.Fprintf(&builder, "\nRecurring: %s", strings.Join(names, ", "))
	}
	if digest.PartialData {
		builder.WriteString("\nSome data could not be loaded.")
	}
	return builder.String()
}
