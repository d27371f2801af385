package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"site-analytics-service/internal/controller"
)

// Register attaches all HTTP routes to the Fiber app. trackRateLimit is
// the per-client request budget per minute on the tracking endpoint; a
// value of zero disables limiting.
func Register(app *fiber.App, analytics controller.AnalyticsController, webhooks controller.WebhookController, trackRateLimit int) {
	api := app.Group("/api")

	an := api.Group("/analytics")
	if trackRateLimit > 0 {
		an.Post("/track", limiter.New(limiter.Config{
			Max:        trackRateLimit,
			Expiration: time.Minute,
		}), analytics.Track)
	} else {
		an.Post("/track", analytics.Track)
	}
	an.Get("/metrics/realtime", analytics.Realtime)
	an.Get("/metrics/daily", analytics.Daily)
	an.Get("/metrics/history", analytics.History)
	an.Post("/metrics/calculate", analytics.Calculate)
	an.Get("/pages/top", analytics.TopPages)
	an.Get("/visits", analytics.Visits)
	an.Get("/stats", analytics.Stats)
	an.Get("/ids", analytics.GenerateIDs)

	wh := api.Group("/webhooks")
	wh.Post("/register", webhooks.Register)
	wh.Get("/list", webhooks.List)
	wh.Delete("/unregister/:id", webhooks.Unregister)
	wh.Get("/health", webhooks.Health)
	wh.Post("/analytics", webhooks.ReceiveAnalytics)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
