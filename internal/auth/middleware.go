package auth

import (
	"strings"

	"gastro-backend/internal/config"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey      = "user_id"
	CtxUserNameKey    = "user_name"
	CtxUserRoleKey    = "user_role"
	CtxLocationIDKey  = "location_id"
	CtxPermissionsKey = "permissions"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserNameKey, claims.Name)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxLocationIDKey, claims.LocationID)
		c.Locals(CtxPermissionsKey, claims.Permissions)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(string)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role not available")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed")
	}
}

// RequirePermission lets admins through and checks everyone else against the
// permission codes carried in the token.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if HasPermission(c, permission) {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusForbidden, "missing permission "+permission)
	}
}

func HasPermission(c *fiber.Ctx, permission string) bool {
	if role, _ := c.Locals(CtxUserRoleKey).(string); role == models.RoleAdmin {
		return true
	}
	perms, _ := c.Locals(CtxPermissionsKey).([]string)
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	return id, ok && id > 0
}

func CurrentUserName(c *fiber.Ctx) string {
	name, _ := c.Locals(CtxUserNameKey).(string)
	return name
}

func CurrentLocationID(c *fiber.Ctx) *uint {
	id, _ := c.Locals(CtxLocationIDKey).(*uint)
	return id
}
