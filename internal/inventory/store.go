package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type ItemFilter struct {
	Category   string
	LocationID *uint
	Search     string
	Status     models.StockStatus
}

func (s *Store) ListItems(f ItemFilter) ([]models.InventoryItem, error) {
	q := s.db.Model(&models.InventoryItem{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ? OR location_id IS NULL", *f.LocationID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}

	var items []models.InventoryItem
	if err := q.Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	if f.Status == "" {
		return items, nil
	}

	filtered := items[:0]
	for _, it := range items {
		if it.Status() == f.Status {
			filtered = append(filtered, it)
		}
	}
	return filtered, nil
}

func (s *Store) GetItem(id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ItemsByIDs returns the requested items keyed by id.
func (s *Store) ItemsByIDs(ids []uint) (map[uint]models.InventoryItem, error) {
	out := make(map[uint]models.InventoryItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.InventoryItem
	if err := s.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (s *Store) CreateItem(item *models.InventoryItem, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityInventoryItem, item.ID, models.AuditActionCreate,
			"Created inventory item "+item.Name, nil, item)
	})
}

func (s *Store) UpdateItem(item *models.InventoryItem, before models.InventoryItem, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityInventoryItem, item.ID, models.AuditActionUpdate,
			"Updated inventory item "+item.Name, before, item)
	})
}

func (s *Store) DeleteItem(id uint, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityInventoryItem, item.ID, models.AuditActionDelete,
			"Deleted inventory item "+item.Name, item, nil)
	})
}

// ApplyMovement locks the item row, moves its stock and stores the movement,
// all inside tx. Sales and purchasing call it from their own transactions.
func ApplyMovement(tx *gorm.DB, mv *models.InventoryMovement) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", mv.InventoryItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}

	next, err := NextQuantity(item.Quantity, mv.MovementType, mv.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", item.Name, err)
	}

	if err := tx.Model(&item).Update("quantity", next).Error; err != nil {
		return nil, err
	}
	item.Quantity = next

	if mv.Unit == "" {
		mv.Unit = item.Unit
	}
	if mv.CostPerUnit == 0 {
		mv.CostPerUnit = item.CostPerUnit
	}
	if mv.LocationID == nil {
		mv.LocationID = item.LocationID
	}
	if err := tx.Create(mv).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) RecordMovement(mv *models.InventoryMovement) (*models.InventoryItem, error) {
	var item *models.InventoryItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = ApplyMovement(tx, mv)
		return err
	})
	return item, err
}

type MovementFilter struct {
	ItemID     uint
	Type       models.MovementType
	LocationID *uint
	From       *time.Time
	To         *time.Time
	Limit      int
}

func (s *Store) ListMovements(f MovementFilter) ([]models.InventoryMovement, error) {
	q := s.db.Model(&models.InventoryMovement{})
	if f.ItemID > 0 {
		q = q.Where("inventory_item_id = ?", f.ItemID)
	}
	if f.Type != "" {
		q = q.Where("movement_type = ?", f.Type)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	var movements []models.InventoryMovement
	err := q.Order("created_at DESC").Limit(limit).Find(&movements).Error
	return movements, err
}

type ImportResult struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Problems []string `json:"problems"`
}

// ImportRows upserts rows by item name. Existing items take the new
// category, unit, minimum and cost, and their quantity is raised through an
// IN movement.
func (s *Store) ImportRows(rows []ImportRow, locationID *uint, actor audit.Actor) (ImportResult, error) {
	res := ImportResult{Problems: []string{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			var item models.InventoryItem
			err := tx.Where("LOWER(name) = ?", strings.ToLower(r.Name)).First(&item).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				item = models.InventoryItem{
					Name:        r.Name,
					Category:    r.Category,
					Unit:        r.Unit,
					Quantity:    r.Quantity,
					MinStock:    r.MinStock,
					CostPerUnit: r.CostPerUnit,
					LocationID:  locationID,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("line %d: %w", r.Line, err)
				}
				if err := actor.Record(tx, audit.EntityInventoryItem, item.ID, models.AuditActionCreate,
					"Imported inventory item "+item.Name, nil, item); err != nil {
					return err
				}
				res.Created++
			case err != nil:
				return err
			default:
				before := item
				if err := tx.Model(&item).Updates(map[string]interface{}{
					"category":      r.Category,
					"unit":          r.Unit,
					"min_stock":     r.MinStock,
					"cost_per_unit": r.CostPerUnit,
				}).Error; err != nil {
					return fmt.Errorf("line %d: %w", r.Line, err)
				}
				if r.Quantity > 0 {
					uid := actor.UserID
					updated, err := ApplyMovement(tx, &models.InventoryMovement{
						InventoryItemID: item.ID,
						MovementType:    models.MovementIn,
						Quantity:        r.Quantity,
						CostPerUnit:     r.CostPerUnit,
						ReferenceType:   "import",
						Notes:           "bulk import",
						UserID:          &uid,
					})
					if err != nil {
						return fmt.Errorf("line %d: %w", r.Line, err)
					}
					item = *updated
				}
				if err := actor.Record(tx, audit.EntityInventoryItem, item.ID, models.AuditActionUpdate,
					"Imported inventory item "+item.Name, before, item); err != nil {
					return err
				}
				res.Updated++
			}
		}
		return nil
	})
	return res, err
}

func (s *Store) RecipesBelowMargin(minMargin float64) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.Where("margin < ?", minMargin).Order("margin").Find(&recipes).Error
	return recipes, err
}
