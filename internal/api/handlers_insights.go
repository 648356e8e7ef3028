package api

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloom/internal/flows"
	"github.com/terraincognita07/bloom/internal/services"
)

// InsightRateLimit caps AI flow calls per user per hour.
func (handler *Handler) InsightRateLimit(c *fiber.Ctx) error {
	userID := currentUserID(c)
	now := handler.now()
	if !handler.flowLimiter.allow(userID, now, insightAttemptLimit, insightAttemptWindow) {
		wait := handler.flowLimiter.retryAfter(userID, now, insightAttemptLimit, insightAttemptWindow)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many insight requests")
	}
	return c.Next()
}

func (handler *Handler) ForecastSymptom(c *fiber.Ctx) error {
	payload := symptomForecastPayload{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	insight, err := handler.insights.ForecastSymptom(c.UserContext(), currentUserID(c), payload.TargetSymptom)
	if err != nil {
		return handler.insightError(c, err)
	}
	return c.JSON(insight)
}

func (handler *Handler) PredictCycle(c *fiber.Ctx) error {
	insight, err := handler.insights.PredictCycle(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.insightError(c, err)
	}
	return c.JSON(insight)
}

func (handler *Handler) RecommendRecovery(c *fiber.Ctx) error {
	insight, err := handler.insights.RecommendRecovery(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.insightError(c, err)
	}
	return c.JSON(insight)
}

func (handler *Handler) AnalyzeLabs(c *fiber.Ctx) error {
	insight, err := handler.insights.AnalyzeLabs(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.insightError(c, err)
	}
	return c.JSON(insight)
}

func (handler *Handler) IdentifyPcosSubtype(c *fiber.Ctx) error {
	insight, err := handler.insights.IdentifyPcosSubtype(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.insightError(c, err)
	}
	return c.JSON(insight)
}

func (handler *Handler) insightError(c *fiber.Ctx, err error) error {
	var flowErr *flows.FlowError
	switch {
	case errors.Is(err, flows.ErrNotConfigured):
		return apiError(c, fiber.StatusServiceUnavailable, "ai flows are not configured")
	case errors.As(err, &flowErr):
		return apiError(c, fiber.StatusBadGateway, "ai flow failed")
	case errors.Is(err, services.ErrUserIDRequired),
		errors.Is(err, services.ErrInsightUnavailable),
		errors.Is(err, services.ErrNoRecurringSymptoms),
		errors.Is(err, services.ErrSymptomNotRecurring),
		errors.Is(err, services.ErrNoLabResults):
		return handler.serviceError(c, err)
	default:
		return apiError(c, fiber.StatusBadGateway, "ai flow failed")
	}
}
