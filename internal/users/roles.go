package users

import (
	"errors"
	"fmt"
	"strings"

	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var ErrUnknownPermission = errors.New("unknown permission")

type RoleRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
}

// cleanPermissions drops duplicates and rejects codes outside the catalogue.
func cleanPermissions(perms []string) ([]string, error) {
	known := make(map[string]bool, len(models.AllPermissions))
	for _, p := range models.AllPermissions {
		known[p] = true
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if !known[p] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// GET /api/roles/permissions
func PermissionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(models.AllPermissions)
	}
}

func ListRolesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var roles []models.Role
		if err := db.Order("name").Find(&roles).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list roles")
		}
		return c.JSON(roles)
	}
}

func CreateRoleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RoleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Name == nil || strings.TrimSpace(*body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}
		perms, err := cleanPermissions(body.Permissions)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		role := models.Role{Name: strings.ToLower(strings.TrimSpace(*body.Name)), Permissions: perms}
		if body.Description != nil {
			role.Description = *body.Description
		}

		var n int64
		if err := db.Model(&models.Role{}).Where("name = ?", role.Name).Count(&n).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create role")
		}
		if n > 0 {
			return fiber.NewError(fiber.StatusConflict, "role already exists")
		}
		if err := db.Create(&role).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create role")
		}
		return c.Status(fiber.StatusCreated).JSON(role)
	}
}

// PUT /api/roles/:id. Built-in roles keep their name; the admin role cannot
// be edited at all.
func UpdateRoleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var role models.Role
		if err := db.First(&role, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "role not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load role")
		}
		if role.Name == models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "the admin role cannot be modified")
		}

		var body RoleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Name != nil {
			name := strings.ToLower(strings.TrimSpace(*body.Name))
			if role.IsSystem && name != role.Name {
				return fiber.NewError(fiber.StatusBadRequest, "built-in roles cannot be renamed")
			}
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name cannot be empty")
			}
			role.Name = name
		}
		if body.Description != nil {
			role.Description = *body.Description
		}
		if body.Permissions != nil {
			perms, err := cleanPermissions(body.Permissions)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			role.Permissions = perms
		}

		if err := db.Save(&role).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update role")
		}
		return c.JSON(role)
	}
}

func DeleteRoleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		var role models.Role
		if err := db.First(&role, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "role not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "could not load role")
		}
		if role.IsSystem {
			return fiber.NewError(fiber.StatusBadRequest, "built-in roles cannot be deleted")
		}

		var assigned int64
		if err := db.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&assigned).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check role usage")
		}
		if assigned > 0 {
			return fiber.NewError(fiber.StatusConflict, "role is assigned to users")
		}
		if err := db.Delete(&role).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete role")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
