package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gastro-backend/internal/models"

	"gorm.io/gorm"
)

const (
	EntityInventoryItem = "inventory_item"
	EntityPromotion     = "promotion"
	EntityRecipe        = "recipe"
	EntitySale          = "sale"
)

var (
	ErrAlreadyUndone = errors.New("action already undone")
	ErrNotUndoable   = errors.New("action cannot be undone")
	ErrUnknownEntity = errors.New("unknown entity type")
	ErrLogNotFound   = errors.New("audit log not found")
)

type LogOptions struct {
	LocationID  *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// toJSON returns "null" for nil so jsonb columns never receive an empty string.
func toJSON(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func WriteLog(db *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		LocationID:  opts.LocationID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  toJSON(opts.Before),
		AfterData:   toJSON(opts.After),
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Undoable reports whether logs of entityType can be reverted.
func Undoable(entityType string) bool {
	return entityType == EntityInventoryItem || entityType == EntityPromotion
}

// UndoLog reverts the logged action and records an undo entry, all in one
// transaction. It returns the entity type that changed.
func UndoLog(db *gorm.DB, logID, userID uint, userName string) (string, error) {
	var entityType string
	err := db.Transaction(func(tx *gorm.DB) error {
		var entry models.AuditLog
		if err := tx.First(&entry, "id = ?", logID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLogNotFound
			}
			return err
		}
		if entry.IsUndone {
			return ErrAlreadyUndone
		}
		if !Undoable(entry.EntityType) {
			return ErrNotUndoable
		}
		entityType = entry.EntityType

		switch entry.Action {
		case models.AuditActionCreate:
			if err := deleteEntity(tx, entry.EntityType, entry.EntityID); err != nil {
				return fmt.Errorf("delete %s: %w", entry.EntityType, err)
			}
		case models.AuditActionUpdate:
			if err := restoreEntity(tx, entry.EntityType, entry.EntityID, entry.BeforeData); err != nil {
				return fmt.Errorf("restore %s: %w", entry.EntityType, err)
			}
		case models.AuditActionDelete:
			if err := recreateEntity(tx, entry.EntityType, entry.BeforeData); err != nil {
				return fmt.Errorf("recreate %s: %w", entry.EntityType, err)
			}
		default:
			return ErrNotUndoable
		}

		now := time.Now()
		entry.IsUndone = true
		entry.UndoneBy = &userID
		entry.UndoneAt = &now
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("mark audit log: %w", err)
		}

		return WriteLog(tx, LogOptions{
			LocationID:  entry.LocationID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			Action:      models.AuditActionUndo,
			Description: "Undone: " + entry.Description,
			Before:      json.RawMessage(entry.AfterData),
			After:       json.RawMessage(entry.BeforeData),
		})
	})
	return entityType, err
}

func deleteEntity(tx *gorm.DB, entityType string, entityID uint) error {
	switch entityType {
	case EntityInventoryItem:
		return tx.Delete(&models.InventoryItem{}, "id = ?", entityID).Error
	case EntityPromotion:
		return tx.Delete(&models.Promotion{}, "id = ?", entityID).Error
	default:
		return ErrUnknownEntity
	}
}

// recreateEntity inserts the snapshot under its original id.
func recreateEntity(tx *gorm.DB, entityType, dataJSON string) error {
	switch entityType {
	case EntityInventoryItem:
		var item models.InventoryItem
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		return tx.Create(&item).Error
	case EntityPromotion:
		var promo models.Promotion
		if err := json.Unmarshal([]byte(dataJSON), &promo); err != nil {
			return err
		}
		return tx.Create(&promo).Error
	default:
		return ErrUnknownEntity
	}
}

// itemRestoreFields lists the columns an undo puts back. Quantity is left out:
// stock only changes through movements, and sales may have consumed it since.
func itemRestoreFields(item models.InventoryItem) map[string]interface{} {
	return map[string]interface{}{
		"name":          item.Name,
		"category":      item.Category,
		"unit":          item.Unit,
		"min_stock":     item.MinStock,
		"max_stock":     item.MaxStock,
		"cost_per_unit": item.CostPerUnit,
		"supplier_id":   item.SupplierID,
		"location_id":   item.LocationID,
		"barcode":       item.Barcode,
		"expiry_date":   item.ExpiryDate,
	}
}

func restoreEntity(tx *gorm.DB, entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case EntityInventoryItem:
		var item models.InventoryItem
		if err := json.Unmarshal([]byte(dataJSON), &item); err != nil {
			return err
		}
		return tx.Model(&models.InventoryItem{}).Where("id = ?", entityID).Updates(itemRestoreFields(item)).Error
	case EntityPromotion:
		var promo models.Promotion
		if err := json.Unmarshal([]byte(dataJSON), &promo); err != nil {
			return err
		}
		promo.ID = entityID
		return tx.Save(&promo).Error
	default:
		return ErrUnknownEntity
	}
}
