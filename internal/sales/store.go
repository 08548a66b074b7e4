package sales

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gastro-backend/internal/audit"
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

var _ Repository = (*Store)(nil)

func (s *Store) List(f Filter) ([]models.Sale, error) {
	q := s.db.Model(&models.Sale{}).Preload("Items")
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var sales []models.Sale
	err := q.Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (s *Store) Get(id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.Preload("Items").Preload("Discounts").First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// moveStock applies one movement per inventory item in id order so that
// concurrent sales lock rows in the same sequence.
func moveStock(tx *gorm.DB, sale *models.Sale, kind models.MovementType, amounts map[uint]float64) error {
	for _, id := range keys(amounts) {
		_, err := inventory.ApplyMovement(tx, &models.InventoryMovement{
			InventoryItemID: id,
			LocationID:      &sale.LocationID,
			MovementType:    kind,
			Quantity:        amounts[id],
			ReferenceType:   "sale",
			ReferenceID:     &sale.ID,
			Notes:           sale.SaleNumber,
			UserID:          sale.UserID,
		})
		if errors.Is(err, inventory.ErrInsufficientStock) {
			return fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Create(sale *models.Sale, consume map[uint]float64, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		if err := moveStock(tx, sale, models.MovementSale, consume); err != nil {
			return err
		}
		return actor.Record(tx, audit.EntitySale, sale.ID, models.AuditActionCreate,
			"Sale "+sale.SaleNumber, nil, sale)
	})
}

// consumed sums the SALE movements recorded for a sale, per inventory item.
func consumed(tx *gorm.DB, saleID uint) (map[uint]float64, error) {
	var moved []models.InventoryMovement
	err := tx.Where("reference_type = ? AND reference_id = ? AND movement_type = ?",
		"sale", saleID, models.MovementSale).Find(&moved).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]float64, len(moved))
	for _, mv := range moved {
		out[mv.InventoryItemID] += math.Abs(mv.Quantity)
	}
	return out, nil
}

// Void cancels a completed sale and reverses the stock it actually consumed.
func (s *Store) Void(id uint, actor audit.Actor) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sale, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSaleNotFound
		}
		if err != nil {
			return err
		}
		if sale.Status == models.SaleCancelled {
			return ErrAlreadyCancelled
		}
		before := sale

		restore, err := consumed(tx, sale.ID)
		if err != nil {
			return err
		}
		if err := moveStock(tx, &sale, models.MovementReturn, restore); err != nil {
			return err
		}
		if err := tx.Model(&sale).Update("status", models.SaleCancelled).Error; err != nil {
			return err
		}
		sale.Status = models.SaleCancelled
		return actor.Record(tx, audit.EntitySale, sale.ID, models.AuditActionUpdate,
			"Voided sale "+sale.SaleNumber, before, sale)
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Where("sale_id = ?", sale.ID).Find(&sale.Items).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) Stats(from, to time.Time, locationID *uint) (DayStats, error) {
	var stats DayStats

	q := s.db.Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0) AS total_sales, COUNT(*) AS count").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.SaleCompleted, from, to)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	if err := q.Scan(&stats).Error; err != nil {
		return stats, err
	}

	items := s.db.Table("sale_items").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Select("COALESCE(SUM(sale_items.quantity), 0)").
		Where("sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?", models.SaleCompleted, from, to)
	if locationID != nil {
		items = items.Where("sales.location_id = ?", *locationID)
	}
	if err := items.Scan(&stats.DishesSold).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
