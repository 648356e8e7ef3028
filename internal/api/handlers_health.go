package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloom/internal/services"
)

const defaultScoreWindowDays = 7

func (handler *Handler) GetSummary(c *fiber.Ctx) error {
	snapshot, err := handler.summary.BuildSummary(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(snapshot)
}

func (handler *Handler) GetScore(c *fiber.Ctx) error {
	days, err := parseWindowDays(c.Query("days"), defaultScoreWindowDays)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid days")
	}

	breakdown, err := handler.dashboard.Score(c.UserContext(), currentUserID(c), days)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"days":      days,
		"score":     breakdown.Score,
		"breakdown": breakdown,
	})
}

func (handler *Handler) GetPhase(c *fiber.Ctx) error {
	reference, err := parseOptionalDay(c.Query("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	result, err := handler.dashboard.Phase(c.UserContext(), currentUserID(c), reference)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(result)
}

func (handler *Handler) GetRecurringSymptoms(c *fiber.Ctx) error {
	recurring, err := handler.dashboard.Recurring(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"symptoms": recurring})
}

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	dashboard, err := handler.dashboard.Build(c.UserContext(), currentUserID(c))
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(dashboard)
}

// serviceError maps service sentinels to statuses. Unknown errors are
// reported without their detail.
func (handler *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserIDRequired):
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrHealthSummaryUnavailable),
		errors.Is(err, services.ErrInsightUnavailable):
		return apiError(c, fiber.StatusServiceUnavailable, "health data unavailable")
	case errors.Is(err, services.ErrCycleNotFound):
		return apiError(c, fiber.StatusNotFound, "cycle not found")
	case errors.Is(err, services.ErrCycleAlreadyClosed):
		return apiError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoRecurringSymptoms),
		errors.Is(err, services.ErrSymptomNotRecurring),
		errors.Is(err, services.ErrNoLabResults):
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	case isValidationError(err):
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		services.ErrInvalidCycleStart,
		services.ErrInvalidCycleEnd,
		services.ErrInvalidCycleLength,
		services.ErrInvalidSymptomName,
		services.ErrInvalidSeverity,
		services.ErrInvalidMealName,
		services.ErrInvalidPCOSScore,
		services.ErrInvalidFoodItems,
		services.ErrInvalidActivity,
		services.ErrInvalidDuration,
		services.ErrInvalidCheckIn,
		services.ErrInvalidLabResult,
		services.ErrInvalidChatID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
