package routes

import (
	"github.com/gofiber/fiber/v2"

	"agrimandi/internal/handlers"
	"agrimandi/internal/middleware"
)

func SetupBuyerRoutes(app *fiber.App) {
	h := handlers.NewRequestHandler()
	admin := handlers.NewAdminHandler()

	buyers := app.Group("/api/buyers", middleware.Protected())

	// Account listings
	buyers.Get("/", middleware.RequireRole("admin"), admin.ListBuyers)
	app.Get("/api/users", middleware.Protected(), middleware.RequireRole("admin"), admin.ListUsers)

	// Buyer side of the lifecycle
	buyers.Post("/connect", middleware.RequireRole("buyer"), h.CreateRequest)
	buyers.Get("/my-requests", middleware.RequireRole("buyer"), h.MyRequests)
	buyers.Patch("/my-requests/:id", middleware.RequireRole("buyer"), h.BuyerCancel)
	buyers.Post("/requests/:id/confirm", middleware.RequireRole("buyer"), h.Confirm)
	buyers.Post("/requests/:id/deny", middleware.RequireRole("buyer"), h.Deny)
	buyers.Post("/requests/:id/reactivate", middleware.RequireRole("buyer"), h.Reactivate)

	// Farmer/admin side
	buyers.Get("/requests", middleware.RequireAnyRole("farmer", "admin"), h.ListRequests)
	buyers.Patch("/requests/:id", middleware.RequireAnyRole("farmer", "admin"), h.UpdateRequest)

	// Admin escape hatch
	buyers.Post("/requests/:id/reassign", middleware.RequireRole("admin"), h.Reassign)
}
