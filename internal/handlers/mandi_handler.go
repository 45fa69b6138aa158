package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agrimandi/internal/database"
	"agrimandi/internal/models"
)

type MandiHandler struct {
	db *gorm.DB
}

func NewMandiHandler() *MandiHandler {
	return &MandiHandler{
		db: database.DB,
	}
}

// ListPrices returns mandi prices, optionally filtered by ?state=.
func (h *MandiHandler) ListPrices(c *fiber.Ctx) error {
	query := h.db.Order("state ASC, district ASC")
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	var prices []models.MandiPrice
	if err := query.Find(&prices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch mandi prices",
		})
	}

	return c.JSON(fiber.Map{"prices": prices})
}

// ListByState returns mandi prices for one state.
func (h *MandiHandler) ListByState(c *fiber.Ctx) error {
	var prices []models.MandiPrice
	if err := h.db.Where("state = ?", c.Params("state")).
		Order("district ASC").
		Find(&prices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch mandi prices",
		})
	}

	return c.JSON(fiber.Map{"prices": prices})
}
