package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/platewatch/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, h *Handler, auth *service.AuthService, mediaDir string) {
	// Health check and uploaded media are public
	app.Get("/health", h.HealthCheck)
	app.Static("/media", mediaDir)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Post("/login", h.Login)

		// Everything below requires a valid bearer token
		protected := api.Group("", RequireAuth(auth))
		{
			plates := protected.Group("/plates", RequirePermission("search"))
			plates.Get("/:plate", h.GetSightings)
			plates.Get("/:plate/stats", h.GetStats)
			plates.Get("/:plate/path", h.GetPath)
			plates.Get("/:plate/summary", h.GetSummary)

			protected.Post("/media/upload", RequirePermission("upload"), h.UploadMedia)
		}
	}
}
