package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"agrimandi/internal/database"
	"agrimandi/internal/models"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{
		db: database.DB,
	}
}

// ListBuyers returns all buyer accounts.
func (h *AdminHandler) ListBuyers(c *fiber.Ctx) error {
	var buyers []models.User
	if err := h.db.Where("role = ?", models.RoleBuyer).
		Order("created_at DESC").
		Find(&buyers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch buyers",
		})
	}

	return c.JSON(fiber.Map{"buyers": buyers})
}

// ListUsers returns every account, optionally filtered by role.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	role := c.Query("role")
	if role != "" && !models.ValidRole(role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role",
		})
	}

	query := h.db.Order("created_at DESC")
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{"users": users})
}
