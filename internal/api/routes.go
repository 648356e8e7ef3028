package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.AuthRequired)

	health := api.Group("/health")
	health.Get("/summary", handler.GetSummary)
	health.Get("/score", handler.GetScore)

	api.Get("/dashboard", handler.GetDashboard)
	api.Get("/cycle/phase", handler.GetPhase)

	cycles := api.Group("/cycles")
	cycles.Post("", handler.StartCycle)
	cycles.Post("/:id/end", handler.EndCycle)

	symptoms := api.Group("/symptoms")
	symptoms.Get("/recurring", handler.GetRecurringSymptoms)
	symptoms.Post("", handler.LogSymptom)

	api.Post("/nutrition", handler.LogMeal)
	api.Post("/fitness", handler.LogWorkout)
	api.Put("/checkins/:date", handler.SaveCheckIn)
	api.Post("/labs", handler.LogLabResult)

	notifications := api.Group("/notifications")
	notifications.Put("/telegram", handler.LinkTelegramChat)
	notifications.Delete("/telegram", handler.UnlinkTelegramChat)

	insights := api.Group("/insights", handler.InsightRateLimit)
	insights.Post("/symptom-forecast", handler.ForecastSymptom)
	insights.Post("/cycle-prediction", handler.PredictCycle)
	insights.Post("/recovery", handler.RecommendRecovery)
	insights.Post("/lab-analysis", handler.AnalyzeLabs)
	insights.Post("/pcos-subtype", handler.IdentifyPcosSubtype)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
