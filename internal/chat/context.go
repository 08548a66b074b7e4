package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gastro-backend/internal/inventory"
	"gastro-backend/internal/models"

	"gorm.io/gorm"
)

// BusinessContext is the snapshot of the business the assistant answers from.
type BusinessContext struct {
	TodaySales float64                `json:"today_sales"`
	TodayCount int64                  `json:"today_count"`
	WeekSales  float64                `json:"week_sales"`
	Critical   []inventory.StockAlert `json:"critical_items"`
	TopRecipe  *models.Recipe         `json:"top_recipe,omitempty"`
}

// Lines renders the context as plain text for the chat model prompt.
func (bc BusinessContext) Lines() string {
	lines := []string{
		fmt.Sprintf("Sales today: Bs. %.2f across %d sales", bc.TodaySales, bc.TodayCount),
		fmt.Sprintf("Sales in the last 7 days: Bs. %.2f", bc.WeekSales),
	}
	if len(bc.Critical) > 0 {
		names := make([]string, len(bc.Critical))
		for i, a := range bc.Critical {
			names[i] = a.Name
		}
		lines = append(lines, "Critical stock: "+strings.Join(names, ", "))
	}
	if bc.TopRecipe != nil {
		lines = append(lines, fmt.Sprintf("Most profitable dish: %s with a %.1f%% margin", bc.TopRecipe.Name, bc.TopRecipe.Margin))
	}
	return strings.Join(lines, "\n")
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) salesSince(from, to time.Time, locationID *uint) (float64, int64, error) {
	var row struct {
		Total float64
		Count int64
	}
	q := s.db.Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS count").
		Where("status = ? AND created_at >= ? AND created_at < ?", models.SaleCompleted, from, to)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	err := q.Scan(&row).Error
	return row.Total, row.Count, err
}

// Context gathers today's and this week's sales, critical stock and the
// available recipe with the best margin.
func (s *Store) Context(locationID *uint) (BusinessContext, error) {
	var bc BusinessContext
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var err error
	if bc.TodaySales, bc.TodayCount, err = s.salesSince(today, today.AddDate(0, 0, 1), locationID); err != nil {
		return bc, err
	}
	if bc.WeekSales, _, err = s.salesSince(today.AddDate(0, 0, -6), today.AddDate(0, 0, 1), locationID); err != nil {
		return bc, err
	}

	var items []models.InventoryItem
	q := s.db.Where("quantity <= min_stock")
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	if err := q.Find(&items).Error; err != nil {
		return bc, err
	}
	bc.Critical = inventory.CriticalStockAlerts(items).Alerts

	var top models.Recipe
	err = s.db.Where("is_available = ?", true).Order("margin DESC").First(&top).Error
	switch {
	case err == nil:
		bc.TopRecipe = &top
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return bc, err
	}
	return bc, nil
}
