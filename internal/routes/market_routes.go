package routes

import (
	"github.com/gofiber/fiber/v2"

	"agrimandi/internal/handlers"
	"agrimandi/internal/middleware"
)

func SetupMarketRoutes(app *fiber.App) {
	commodityHandler := handlers.NewCommodityHandler()
	mandiHandler := handlers.NewMandiHandler()

	// Live commodity price board (public read, admin write)
	commodities := app.Group("/api/commodities")
	commodities.Get("/", commodityHandler.List)
	commodities.Get("/sse", commodityHandler.Stream)
	commodities.Post("/update", middleware.Protected(), middleware.RequireRole("admin"), commodityHandler.Update)

	// Mandi reference prices (public)
	mandi := app.Group("/api/mandi")
	mandi.Get("/prices", mandiHandler.ListPrices)
	mandi.Get("/prices/:state", mandiHandler.ListByState)

	// Weather proxy (public)
	app.Get("/api/external-weather", handlers.GetWeather)
}
