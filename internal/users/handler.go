package users

import (
	"errors"
	"fmt"
	"strings"

	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RoleID     uint   `json:"role_id"`
	LocationID *uint  `json:"location_id"`
}

type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	RoleID     *uint   `json:"role_id"`
	LocationID *uint   `json:"location_id"`
	IsActive   *bool   `json:"is_active"`
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func checkPassword(p string) error {
	if len(p) < auth.MinPasswordLen {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLen))
	}
	return nil
}

func roleExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&models.Role{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not check role")
	}
	if n == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "role does not exist")
	}
	return nil
}

func emailTaken(db *gorm.DB, email string, exceptID uint) error {
	var n int64
	if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, exceptID).Count(&n).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not check email")
	}
	if n > 0 {
		return fiber.NewError(fiber.StatusConflict, "email is already registered")
	}
	return nil
}

// GET /api/users?location_id=
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Preload("Role").Preload("Location").Order("name")
		if v := c.QueryInt("location_id"); v > 0 {
			q = q.Where("location_id = ?", v)
		}
		var users []models.User
		if err := q.Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list users")
		}
		return c.JSON(users)
	}
}

func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = auth.NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Email == "" || body.RoleID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "name, email and role_id are required")
		}
		if err := checkPassword(body.Password); err != nil {
			return err
		}
		if err := roleExists(db, body.RoleID); err != nil {
			return err
		}
		if err := emailTaken(db, body.Email, 0); err != nil {
			return err
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
		}
		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			RoleID:       body.RoleID,
			LocationID:   body.LocationID,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

func UpdateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var user models.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "user not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load user")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			user.Name = name
		}
		if body.Email != nil {
			email := auth.NormalizeEmail(*body.Email)
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "email cannot be empty")
			}
			if err := emailTaken(db, email, user.ID); err != nil {
				return err
			}
			user.Email = email
		}
		if body.Password != nil {
			if err := checkPassword(*body.Password); err != nil {
				return err
			}
			hash, err := auth.HashPassword(*body.Password)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
			}
			user.PasswordHash = hash
		}
		if body.RoleID != nil {
			if err := roleExists(db, *body.RoleID); err != nil {
				return err
			}
			user.RoleID = *body.RoleID
		}
		if body.LocationID != nil {
			user.LocationID = body.LocationID
		}
		if body.IsActive != nil {
			if me, _ := auth.CurrentUserID(c); me == user.ID && !*body.IsActive {
				return fiber.NewError(fiber.StatusBadRequest, "you cannot deactivate yourself")
			}
			user.IsActive = *body.IsActive
		}

		if err := db.Omit("Role", "Location").Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update user")
		}
		return c.JSON(user)
	}
}

func DeleteUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if me, _ := auth.CurrentUserID(c); me == id {
			return fiber.NewError(fiber.StatusBadRequest, "you cannot delete yourself")
		}
		res := db.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete user")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
