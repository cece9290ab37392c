package api

import (
	"github.com/gofiber/fiber/v2"
)

// BodyLimit caps uploaded CSV size
const BodyLimit = 32 << 20

// NewApp creates a fiber app with every route registered
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "salescast",
		BodyLimit: BodyLimit,
	})
	SetupRoutes(app, h)
	return app
}

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/healthz", h.HandleHealth)

	api := app.Group("/api/v1")
	api.Post("/forecast", h.HandleForecast)
}
