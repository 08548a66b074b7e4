package reports

import (
	"context"
	"time"

	"gastro-backend/internal/events"
	"gastro-backend/internal/models"

	"gorm.io/gorm"
)

// LiveCounters reads the per-day aggregates kept by the sales event consumer.
type LiveCounters interface {
	Daily(ctx context.Context, date string, locationID uint) (events.DailyStats, error)
}

type Service struct {
	db       *gorm.DB
	counters LiveCounters
	now      func() time.Time
}

// NewService accepts nil counters when Redis is not configured.
func NewService(db *gorm.DB, counters LiveCounters) *Service {
	return &Service{db: db, counters: counters, now: time.Now}
}

// completedSales loads completed sales in [from, to) with their lines.
func (s *Service) completedSales(from, to time.Time, locationID *uint) ([]models.Sale, error) {
	q := s.db.Preload("Items").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.SaleCompleted, from, to)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	var sales []models.Sale
	err := q.Order("created_at").Find(&sales).Error
	return sales, err
}

func (s *Service) recipes() ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.Order("name").Find(&recipes).Error
	return recipes, err
}

func (s *Service) Summary(days int, locationID *uint) (Summary, error) {
	now := s.now()
	start := now.AddDate(0, 0, -days)
	current, err := s.completedSales(start, now, locationID)
	if err != nil {
		return Summary{}, err
	}
	previous, err := s.completedSales(start.AddDate(0, 0, -days), start, locationID)
	if err != nil {
		return Summary{}, err
	}
	recipes, err := s.recipes()
	if err != nil {
		return Summary{}, err
	}
	return buildSummary(current, previous, recipes, days), nil
}

func (s *Service) Monthly(months int, locationID *uint) ([]MonthRow, error) {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1-months, 0)
	sales, err := s.completedSales(first, now, locationID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes()
	if err != nil {
		return nil, err
	}
	return buildMonthly(sales, recipes, now, months), nil
}

func (s *Service) Categories(days int, locationID *uint) ([]CategoryRow, error) {
	now := s.now()
	sales, err := s.completedSales(now.AddDate(0, 0, -days), now, locationID)
	if err != nil {
		return nil, err
	}
	return buildCategories(sales), nil
}

func (s *Service) Margins() ([]MarginRow, error) {
	recipes, err := s.recipes()
	if err != nil {
		return nil, err
	}
	return buildMargins(recipes), nil
}

func (s *Service) PaymentMethods(days int, locationID *uint) ([]PaymentRow, error) {
	now := s.now()
	sales, err := s.completedSales(now.AddDate(0, 0, -days), now, locationID)
	if err != nil {
		return nil, err
	}
	return buildPayments(sales), nil
}

// Full assembles every section over the last days and six months.
func (s *Service) Full(days int, locationID *uint) (*Report, error) {
	now := s.now()
	start := now.AddDate(0, 0, -days)
	current, err := s.completedSales(start, now, locationID)
	if err != nil {
		return nil, err
	}
	previous, err := s.completedSales(start.AddDate(0, 0, -days), start, locationID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes()
	if err != nil {
		return nil, err
	}
	monthly, err := s.Monthly(6, locationID)
	if err != nil {
		return nil, err
	}
	return &Report{
		Summary:    buildSummary(current, previous, recipes, days),
		Monthly:    monthly,
		Categories: buildCategories(current),
		Margins:    buildMargins(recipes),
		Payments:   buildPayments(current),
		ExportedAt: now,
	}, nil
}

// Live returns today's counters, zeroed when counters are disabled.
func (s *Service) Live(ctx context.Context, locationID uint) (events.DailyStats, error) {
	day := s.now().Format("2006-01-02")
	if s.counters == nil {
		return events.DailyStats{Date: day, LocationID: locationID}, nil
	}
	return s.counters.Daily(ctx, day, locationID)
}
