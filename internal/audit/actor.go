package audit

import (
	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Actor is who performed an audited change.
type Actor struct {
	UserID     uint
	UserName   string
	LocationID *uint
}

func ActorFrom(c *fiber.Ctx) Actor {
	id, _ := auth.CurrentUserID(c)
	return Actor{
		UserID:     id,
		UserName:   auth.CurrentUserName(c),
		LocationID: auth.CurrentLocationID(c),
	}
}

// Record writes a log entry for a change made by a.
func (a Actor) Record(tx *gorm.DB, entityType string, entityID uint, action models.AuditAction, description string, before, after any) error {
	return WriteLog(tx, LogOptions{
		LocationID:  a.LocationID,
		UserID:      a.UserID,
		UserName:    a.UserName,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	})
}
