package purchasing

import (
	"errors"
	"fmt"
	"time"

	"gastro-backend/internal/inventory"
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

type Filter struct {
	Status     models.PurchaseOrderStatus
	SupplierID *uint
	LocationID *uint
}

func (s *Store) List(f Filter) ([]models.PurchaseOrder, error) {
	q := s.db.Preload("Items").Preload("Supplier")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	var orders []models.PurchaseOrder
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (s *Store) Get(id uint) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	if err := s.db.Preload("Items").Preload("Supplier").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *Store) Create(order *models.PurchaseOrder) error {
	return s.db.Create(order).Error
}

// lock loads the order row for update inside tx and checks the status change.
func lock(tx *gorm.DB, id uint, to models.PurchaseOrderStatus) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, to)
	}
	return &order, nil
}

// SetStatus approves or cancels an order.
func (s *Store) SetStatus(id uint, to models.PurchaseOrderStatus, userID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := lock(tx, id, to)
		if err != nil {
			return err
		}
		updates := map[string]any{"status": to}
		if to == models.POApproved {
			updates["approved_by"] = userID
		}
		return tx.Model(order).Updates(updates).Error
	})
}

// Receive books the delivered goods into inventory with IN movements at the
// purchase price, and makes that price the item's current cost.
func (s *Store) Receive(id uint, received map[uint]float64, userID *uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		order, err := lock(tx, id, models.POReceived)
		if err != nil {
			return err
		}
		var items []models.PurchaseOrderItem
		if err := tx.Where("purchase_order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}

		for _, it := range items {
			qty, err := receivedQuantity(it, received)
			if err != nil {
				return err
			}
			if err := tx.Model(&it).Update("received_quantity", qty).Error; err != nil {
				return err
			}
			if it.InventoryItemID == nil || qty == 0 {
				continue
			}
			_, err = inventory.ApplyMovement(tx, &models.InventoryMovement{
				InventoryItemID: *it.InventoryItemID,
				LocationID:      &order.LocationID,
				MovementType:    models.MovementIn,
				Quantity:        qty,
				Unit:            it.Unit,
				CostPerUnit:     it.UnitPrice,
				ReferenceType:   "purchase_order",
				ReferenceID:     &order.ID,
				Notes:           order.OrderNumber,
				UserID:          userID,
			})
			if err != nil {
				return err
			}
			if err := tx.Model(&models.InventoryItem{}).Where("id = ?", *it.InventoryItemID).
				Update("cost_per_unit", it.UnitPrice).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(order).Updates(map[string]any{
			"status":        models.POReceived,
			"received_date": now,
		}).Error
	})
}
