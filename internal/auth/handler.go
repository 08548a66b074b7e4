package auth

import (
	"strings"

	"gastro-backend/internal/config"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const MinPasswordLen = 8

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// RegisterAdminHandler bootstraps the very first admin. Once any admin exists
// further accounts are created through the users API.
func RegisterAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
		}
		if len(body.Password) < MinPasswordLen {
			return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
		}

		var adminRole models.Role
		if err := db.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "admin role missing")
		}

		var count int64
		db.Model(&models.User{}).Where("role_id = ?", adminRole.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "an admin already exists")
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			RoleID:       adminRole.ID,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  adminRole.Name,
		})
	}
}

func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = NormalizeEmail(body.Email)

		var user models.User
		if err := db.Preload("Role").Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid email or password")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusForbidden, "user is disabled")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  user,
		})
	}
}

// MeHandler always answers from the database so a disabled user or a changed
// role is visible before the token expires.
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "user not available")
		}

		var user models.User
		if err := db.Preload("Role").Preload("Location").First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user not found")
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusForbidden, "user is disabled")
		}

		perms := []string{}
		if user.Role != nil {
			perms = user.Role.Permissions
			if user.Role.Name == models.RoleAdmin {
				perms = models.AllPermissions
			}
		}

		return c.JSON(fiber.Map{
			"user":        user,
			"permissions": perms,
		})
	}
}
