package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/bloom/internal/services"
)

const (
	insightAttemptLimit  = 20
	insightAttemptWindow = time.Hour
	maxScoreWindowDays   = 90
)

type Handler struct {
	signingKey  []byte
	location    *time.Location
	summary     *services.SummaryService
	dashboard   *services.DashboardService
	insights    *services.InsightService
	logs        *services.LogService
	chats       services.ChatLinker
	flowLimiter *attemptLimiter
	now         func() time.Time
}

// Dependencies are the services behind the routes. Logs and Chats may be nil
// when the backing store is read-only; the write routes then answer 501.
type Dependencies struct {
	Summary   *services.SummaryService
	Dashboard *services.DashboardService
	Insights  *services.InsightService
	Logs      *services.LogService
	Chats     services.ChatLinker
}

func NewHandler(secretKey string, location *time.Location, deps Dependencies) (*Handler, error) {
	if deps.Summary == nil || deps.Dashboard == nil || deps.Insights == nil {
		return nil, errors.New("summary, dashboard and insight services are required")
	}
	signingKey, err := DeriveSigningKey(secretKey)
	if err != nil {
		return nil, err
	}
	if location == nil {
		location = time.UTC
	}

	return &Handler{
		signingKey:  signingKey,
		location:    location,
		summary:     deps.Summary,
		dashboard:   deps.Dashboard,
		insights:    deps.Insights,
		logs:        deps.Logs,
		chats:       deps.Chats,
		flowLimiter: newAttemptLimiter(),
		now:         time.Now,
	}, nil
}
