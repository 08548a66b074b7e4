package promotions

import (
	"errors"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ Repository = (*Store)(nil)

func (s *Store) List(f Filter) ([]models.Promotion, error) {
	q := s.db.Model(&models.Promotion{})
	if f.LocationID != nil {
		q = q.Where("location_id = ? OR location_id IS NULL", *f.LocationID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var promos []models.Promotion
	err := q.Order("start_date DESC").Find(&promos).Error
	return promos, err
}

func (s *Store) Get(id uint) (*models.Promotion, error) {
	var p models.Promotion
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ActiveAt lists promotions running at the given instant. Promotions without
// a location apply everywhere.
func (s *Store) ActiveAt(locationID *uint, at time.Time) ([]models.Promotion, error) {
	q := s.db.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, at, at)
	if locationID != nil {
		q = q.Where("location_id = ? OR location_id IS NULL", *locationID)
	}
	var promos []models.Promotion
	err := q.Order("end_date").Find(&promos).Error
	return promos, err
}

func (s *Store) Create(p *models.Promotion, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityPromotion, p.ID, models.AuditActionCreate,
			"Created promotion "+p.Name, nil, p)
	})
}

func (s *Store) Update(p *models.Promotion, before models.Promotion, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityPromotion, p.ID, models.AuditActionUpdate,
			"Updated promotion "+p.Name, before, p)
	})
}

func (s *Store) Delete(id uint, actor audit.Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Promotion
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPromotionNotFound
			}
			return err
		}
		if err := tx.Delete(&p).Error; err != nil {
			return err
		}
		return actor.Record(tx, audit.EntityPromotion, p.ID, models.AuditActionDelete,
			"Deleted promotion "+p.Name, p, nil)
	})
}
