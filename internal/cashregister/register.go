package cashregister

import (
	"errors"
	"time"

	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyOpen     = errors.New("a cash session is already open for this user and location")
	ErrSessionNotFound = errors.New("cash session not found")
	ErrSessionClosed   = errors.New("cash session is already closed")
	ErrNegativeAmount  = errors.New("amounts cannot be negative")
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Current returns the open session of the user at the location, or nil.
func (s *Store) Current(userID, locationID uint) (*models.CashSession, error) {
	var session models.CashSession
	err := s.db.Where("user_id = ? AND location_id = ? AND status = ?", userID, locationID, models.CashSessionOpen).
		Order("opened_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) Open(userID, locationID uint, opening float64, comments string) (*models.CashSession, error) {
	if opening < 0 {
		return nil, ErrNegativeAmount
	}
	var session *models.CashSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Serialises concurrent opens by the same user.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&models.User{}, "id = ?", userID).Error; err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&models.CashSession{}).
			Where("user_id = ? AND location_id = ? AND status = ?", userID, locationID, models.CashSessionOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrAlreadyOpen
		}
		session = &models.CashSession{
			LocationID:    locationID,
			UserID:        userID,
			OpeningAmount: pricing.RoundMoney(opening),
			Status:        models.CashSessionOpen,
			OpenedAt:      s.now(),
			Comments:      comments,
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Reconcile computes what the drawer should hold and how far the count is off.
func Reconcile(opening, sales, counted float64) (system, difference float64) {
	system = pricing.RoundMoney(opening + sales)
	return system, pricing.RoundMoney(counted - system)
}

// Close counts the user's completed sales at the location since the session
// opened and stores the reconciliation.
func (s *Store) Close(id uint, counted float64, comments string) (*models.CashSession, error) {
	if counted < 0 {
		return nil, ErrNegativeAmount
	}
	var session models.CashSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if session.Status != models.CashSessionOpen {
			return ErrSessionClosed
		}

		closedAt := s.now()
		var sales float64
		if err := tx.Model(&models.Sale{}).
			Select("COALESCE(SUM(total), 0)").
			Where("user_id = ? AND location_id = ? AND status = ? AND created_at >= ? AND created_at <= ?",
				session.UserID, session.LocationID, models.SaleCompleted, session.OpenedAt, closedAt).
			Scan(&sales).Error; err != nil {
			return err
		}

		system, diff := Reconcile(session.OpeningAmount, sales, counted)
		counted = pricing.RoundMoney(counted)
		session.CountedAmount = &counted
		session.SystemAmount = &system
		session.Difference = &diff
		session.Status = models.CashSessionClosed
		session.ClosedAt = &closedAt
		if comments != "" {
			session.Comments = comments
		}
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
