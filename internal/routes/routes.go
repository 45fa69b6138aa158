package routes

import (
	"github.com/gofiber/fiber/v2"

	"agrimandi/internal/handlers"
	"agrimandi/internal/middleware"
)

func SetupRoutes(app *fiber.App) {
	// API routes
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")

	auth.Post("/register", handlers.Register)
	auth.Get("/verify-email", handlers.VerifyEmail)
	auth.Post("/login", handlers.Login)
	auth.Get("/me", middleware.Protected(), handlers.Me)

	// Password reset flow
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AgriMandi API v1.0",
			"status":  "running",
		})
	})
}
