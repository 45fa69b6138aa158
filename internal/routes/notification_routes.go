package routes

import (
	"github.com/gofiber/fiber/v2"

	"agrimandi/internal/handlers"
	"agrimandi/internal/middleware"
)

func SetupNotificationRoutes(app *fiber.App) {
	// Notification routes (all require authentication)
	notifications := app.Group("/api/notifications", middleware.Protected())

	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkAsRead)
	notifications.Put("/read-all", handlers.MarkAllAsRead)
}
