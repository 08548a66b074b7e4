package audit

import (
	"errors"
	"fmt"

	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	LocationID  *uint              `json:"location_id"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Undoable    bool               `json:"undoable"`
	IsUndone    bool               `json:"is_undone"`
	UndoneBy    *uint              `json:"undone_by"`
	UndoneAt    *string            `json:"undone_at"`
}

// GET /api/audit-logs?entity_type=promotion&entity_id=1&user_id=2&location_id=1
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.AuditLog{})

		// non-admins only see their own location
		if role, _ := c.Locals(auth.CtxUserRoleKey).(string); role != models.RoleAdmin {
			if loc := auth.CurrentLocationID(c); loc != nil {
				dbq = dbq.Where("location_id = ?", *loc)
			}
		} else if v := c.QueryInt("location_id"); v > 0 {
			dbq = dbq.Where("location_id = ?", v)
		}

		if v := c.QueryInt("user_id"); v > 0 {
			dbq = dbq.Where("user_id = ?", v)
		}
		if v := c.Query("entity_type"); v != "" {
			dbq = dbq.Where("entity_type = ?", v)
		}
		if v := c.QueryInt("entity_id"); v > 0 {
			dbq = dbq.Where("entity_id = ?", v)
		}

		limit := c.QueryInt("limit", 200)
		if limit <= 0 || limit > 1000 {
			limit = 200
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list audit logs")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			var undoneAt *string
			if l.UndoneAt != nil {
				formatted := l.UndoneAt.Format("2006-01-02 15:04:05")
				undoneAt = &formatted
			}
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				LocationID:  l.LocationID,
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				Undoable:    Undoable(l.EntityType) && l.Action != models.AuditActionUndo && !l.IsUndone,
				IsUndone:    l.IsUndone,
				UndoneBy:    l.UndoneBy,
				UndoneAt:    undoneAt,
			})
		}

		return c.JSON(resp)
	}
}

// POST /api/audit-logs/:id/undo
//
// onUndo, when set, is told which entity type changed so dependent caches can
// be dropped.
func UndoAuditLogHandler(db *gorm.DB, onUndo func(c *fiber.Ctx, entityType string)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var logID uint
		if _, err := fmt.Sscan(c.Params("id"), &logID); err != nil || logID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid log id")
		}

		actor := ActorFrom(c)
		if actor.UserID == 0 {
			return fiber.NewError(fiber.StatusForbidden, "user not available")
		}

		entityType, err := UndoLog(db, logID, actor.UserID, actor.UserName)
		switch {
		case errors.Is(err, ErrLogNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrAlreadyUndone), errors.Is(err, ErrNotUndoable), errors.Is(err, ErrUnknownEntity):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		if onUndo != nil {
			onUndo(c, entityType)
		}

		return c.JSON(fiber.Map{"message": "action undone"})
	}
}
