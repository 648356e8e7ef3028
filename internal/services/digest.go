package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const maxTrackedDigests = 500

// UserLister enumerates the users that have any logged data.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Digest is the once-a-day recap sent to a user.
type Digest struct {
	UserID      string             `json:"userId"`
	Date        string             `json:"date"`
	Cycle       PhaseResult        `json:"cycle"`
	HealthScore int                `json:"healthScore"`
	Missing     []Signal           `json:"missingSignals"`
	Recurring   []RecurringSymptom `json:"recurringSymptoms"`
	PartialData bool               `json:"partialData"`
}

type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}

type DigestService struct {
	users     UserLister
	dashboard *DashboardService
	notifier  Notifier
	logger    *slog.Logger

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewDigestService(users UserLister, dashboard *DashboardService, notifier Notifier, logger *slog.Logger) *DigestService {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &DigestService{
		users:     users,
		dashboard: dashboard,
		notifier:  notifier,
		logger:    logger,
		sent:      make(map[string]time.Time),
	}
}

// Run builds and sends today's digest for every known user. A user already
// notified today is skipped, so repeated runs on the same day are harmless.
// It returns the number of digests delivered.
func (service *DigestService) Run(ctx context.Context) (int, error) {
	userIDs, err := service.users.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list digest users: %w", err)
	}

	now := service.dashboard.now()
	today := DateAtLocation(now, service.dashboard.location)
	delivered := 0

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		key := userID + ":" + today.Format(time.DateOnly)
		if !service.shouldSend(key, today) {
			continue
		}

		dashboard, err := service.dashboard.Build(ctx, userID)
		if err != nil {
			service.logger.WarnContext(ctx, "digest build failed", "user_id", userID, "error", err)
			service.forget(key)
			continue
		}

		digest := DigestFromDashboard(userID, today, dashboard)
		if err := service.notifier.Notify(ctx, digest); err != nil {
			service.logger.WarnContext(ctx, "digest delivery failed", "user_id", userID, "error", err)
			service.forget(key)
			continue
		}
		delivered++
	}

	service.logger.InfoContext(ctx, "digest run finished", "users", len(userIDs), "delivered", delivered)
	return delivered, nil
}

func DigestFromDashboard(userID string, day time.Time, dashboard Dashboard) Digest {
	return Digest{
		UserID:      userID,
		Date:        day.Format(time.DateOnly),
		Cycle:       dashboard.Cycle,
		HealthScore: dashboard.HealthScore.Score,
		Missing:     dashboard.HealthScore.MissingSignals,
		Recurring:   dashboard.Recurring,
		PartialData: dashboard.PartialData,
	}
}

func (service *DigestService) shouldSend(key string, today time.Time) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if sentOn, ok := service.sent[key]; ok && sentOn.Equal(today) {
		return false
	}

	if len(service.sent) >= maxTrackedDigests {
		service.sent = make(map[string]time.Time)
	}
	service.sent[key] = today
	return true
}

func (service *DigestService) forget(key string) {
	service.mu.Lock()
	delete(service.sent, key)
	service.mu.Unlock()
}
