package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/bloom/internal/models"
	"github.com/terraincognita07/bloom/internal/services"
)

func (handler *Handler) StartCycle(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	payload := cyclePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	startDate, err := parseDayParam(payload.StartDate, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid start date")
	}

	cycle, err := handler.logs.StartCycle(c.UserContext(), currentUserID(c), services.CycleInput{
		StartDate: startDate,
		Length:    payload.Length,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cycle)
}

func (handler *Handler) EndCycle(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	payload := endCyclePayload{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	endDate, err := parseOptionalDay(payload.EndDate, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid end date")
	}

	cycle, err := handler.logs.EndCycle(c.UserContext(), currentUserID(c), c.Params("id"), endDate)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(cycle)
}

func (handler *Handler) LogSymptom(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	payload := symptomPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	timestamp, err := parseOptionalInstant(payload.Timestamp)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid timestamp")
	}

	entry, err := handler.logs.LogSymptom(c.UserContext(), currentUserID(c), services.SymptomInput{
		SymptomType: payload.SymptomType,
		Severity:    payload.Severity,
		BodyZone:    payload.BodyZone,
		Timestamp:   timestamp,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) LogMeal(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	payload := mealPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	loggedAt, err := parseOptionalInstant(payload.LoggedAt)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid loggedAt")
	}

	entry, err := handler.logs.LogMeal(c.UserContext(), currentUserID(c), services.MealInput{
		MealName:  payload.MealName,
		PCOSScore: payload.PCOSScore,
		FoodItems: payload.FoodItems,
		LoggedAt:  loggedAt,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) LogWorkout(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	payload := workoutPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	completedAt, err := parseOptionalInstant(payload.CompletedAt)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid completedAt")
	}

	entry, err := handler.logs.LogWorkout(c.UserContext(), currentUserID(c), services.WorkoutInput{
		ActivityType: payload.ActivityType,
		Duration:     payload.Duration,
		CompletedAt:  completedAt,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (handler *Handler) SaveCheckIn(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	day, err := parseDayParam(c.Params("date"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}
	payload := checkInPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := handler.logs.SaveCheckIn(c.UserContext(), currentUserID(c), services.CheckInInput{
		Date:        day,
		Mood:        payload.Mood,
		EnergyLevel: payload.EnergyLevel,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(entry)
}

func (handler *Handler) LogLabResult(c *fiber.Ctx) error {
	if handler.logs == nil {
		return writesUnsupported(c)
	}
	payload := labResultPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	testDate, err := parseDayParam(payload.TestDate, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid test date")
	}

	markers := make([]models.LabMarker, 0, len(payload.Results))
	for _, marker := range payload.Results {
		markers = append(markers, models.LabMarker{
			Marker:      marker.Marker,
			Value:       marker.Value,
			Unit:        marker.Unit,
			NormalRange: marker.NormalRange,
		})
	}

	entry, err := handler.logs.LogLabResult(c.UserContext(), currentUserID(c), services.LabResultInput{
		TestType: payload.TestType,
		TestDate: testDate,
		Results:  markers,
	})
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func writesUnsupported(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotImplemented, "store is read-only")
}
