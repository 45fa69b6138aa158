package handlers

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agrimandi/internal/database"
	"agrimandi/internal/models"
	"agrimandi/internal/services"
)

var (
	validate     = validator.New()
	emailService *services.EmailService
)

const tokenTTL = 24 * time.Hour

// InitEmailService initializes the email service
func InitEmailService() {
	emailService = services.NewEmailService()
}

type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role"`
	Contact   string `json:"contact"`
	AdminCode string `json:"admin_code"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates an unverified account and mails a one-time verification
// link. Email delivery is fire-and-forget: a mail failure never blocks
// registration from completing.
func Register(c *fiber.Ctx) error {
	req := new(RegisterRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password required",
		})
	}

	// sanitize role input
	role := models.Role(req.Role)
	if !models.ValidRole(req.Role) {
		role = models.RoleBuyer
	}

	// protect admin creation by env code
	if role == models.RoleAdmin {
		required := os.Getenv("ADMIN_REG_CODE")
		if required == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin registration disabled",
			})
		}
		if req.AdminCode != required {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid admin code",
			})
		}
	}

	email := strings.ToLower(req.Email)

	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already registered",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process password",
		})
	}

	user := models.User{
		Name:       req.Name,
		Email:      email,
		Password:   string(hashed),
		Role:       role,
		Contact:    req.Contact,
		IsVerified: false,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	token := models.AuthToken{
		Token:     randomToken(),
		UserID:    user.ID,
		Kind:      models.TokenVerifyEmail,
		ExpiresAt: time.Now().Add(tokenTTL),
	}
	if err := database.DB.Create(&token).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create verification token",
		})
	}

	emailService.SendVerificationEmail(user.Email, user.Name, token.Token)

	return c.JSON(fiber.Map{
		"ok":      true,
		"message": "Registered. Please check your email to verify your account.",
	})
}

// VerifyEmail consumes a one-time verification token and flips the account
// verified. The flip happens exactly once: the token is deleted on use.
func VerifyEmail(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token required",
		})
	}

	var token models.AuthToken
	err := database.DB.Where("token = ? AND kind = ?", tokenString, models.TokenVerifyEmail).First(&token).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}
	if token.Expired() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Token expired",
		})
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", token.UserID).Update("is_verified", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to verify account",
		})
	}
	database.DB.Delete(&token)

	front := os.Getenv("APP_URL")
	if front == "" {
		front = "http://localhost:8080"
	}
	return c.Redirect(front + "/?verified=1")
}

// Login authenticates a user. Unverified accounts never receive a token;
// every downstream authorization check can therefore assume the caller is
// verified.
func Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password required",
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid credentials",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if !user.IsVerified {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Email not verified. Check your inbox.",
		})
	}

	token, err := generateJWT(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":      user.ID,
			"name":    user.Name,
			"email":   user.Email,
			"role":    user.Role,
			"contact": user.Contact,
		},
	})
}

// Me returns the authenticated account's profile.
func Me(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"role":        user.Role,
			"contact":     user.Contact,
			"is_verified": user.IsVerified,
		},
	})
}

// ForgotPassword mails a one-time reset link. The response never reveals
// whether the email exists.
func ForgotPassword(c *fiber.Ctx) error {
	req := new(ForgotPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email required",
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		return c.JSON(fiber.Map{"ok": true})
	}

	token := models.AuthToken{
		Token:     randomToken(),
		UserID:    user.ID,
		Kind:      models.TokenResetPassword,
		ExpiresAt: time.Now().Add(tokenTTL),
	}
	if err := database.DB.Create(&token).Error; err != nil {
		log.Printf("Failed to create reset token for %s: %v", user.Email, err)
		return c.JSON(fiber.Map{"ok": true})
	}

	emailService.SendPasswordResetEmail(user.Email, token.Token)

	return c.JSON(fiber.Map{"ok": true})
}

// ResetPassword sets a new password from a one-time reset token.
func ResetPassword(c *fiber.Ctx) error {
	req := new(ResetPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "token and password required",
		})
	}

	var token models.AuthToken
	err := database.DB.Where("token = ? AND kind = ?", req.Token, models.TokenResetPassword).First(&token).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}
	if token.Expired() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Token expired",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process password",
		})
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", token.UserID).Update("password", string(hashed)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}
	database.DB.Delete(&token)

	return c.JSON(fiber.Map{
		"ok":      true,
		"message": "Password updated",
	})
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func generateJWT(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable not set")
	}

	return token.SignedString([]byte(secret))
}
