package inventory

import (
	"math"

	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
)

const (
	DefaultLowStockThreshold = 1.2
	DefaultMinMargin         = 30.0

	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

type StockAlert struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Quantity   float64 `json:"quantity"`
	MinStock   float64 `json:"min_stock"`
	Unit       string  `json:"unit"`
	Percentage float64 `json:"percentage"`
	Shortage   float64 `json:"shortage"`
	Severity   string  `json:"severity"`
}

type MarginAlert struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Price            float64 `json:"price"`
	Cost             float64 `json:"cost"`
	Margin           float64 `json:"margin"`
	RecommendedPrice float64 `json:"recommended_price"`
	Severity         string  `json:"severity"`
}

type AlertList[T any] struct {
	Count  int `json:"count"`
	Alerts []T `json:"alerts"`
}

func newAlertList[T any](alerts []T) AlertList[T] {
	if alerts == nil {
		alerts = []T{}
	}
	return AlertList[T]{Count: len(alerts), Alerts: alerts}
}

func stockPercentage(item models.InventoryItem) float64 {
	if item.MinStock <= 0 {
		return 0
	}
	return item.Quantity / item.MinStock * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CriticalStockAlerts lists items at or below their minimum. Items under half
// of the minimum are critical, the rest warnings.
func CriticalStockAlerts(items []models.InventoryItem) AlertList[StockAlert] {
	var alerts []StockAlert
	for _, item := range items {
		if item.Quantity > item.MinStock {
			continue
		}
		pct := stockPercentage(item)
		severity := SeverityWarning
		if pct <= 50 {
			severity = SeverityCritical
		}
		alerts = append(alerts, StockAlert{
			ID:         item.ID,
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			MinStock:   item.MinStock,
			Unit:       item.Unit,
			Percentage: round1(pct),
			Shortage:   pricing.RoundMoney(item.MinStock - item.Quantity),
			Severity:   severity,
		})
	}
	return newAlertList(alerts)
}

// LowStockAlerts lists items at or below MinStock*threshold, critical ones
// included.
func LowStockAlerts(items []models.InventoryItem, threshold float64) AlertList[StockAlert] {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	var alerts []StockAlert
	for _, item := range items {
		if item.Quantity > item.MinStock*threshold {
			continue
		}
		alerts = append(alerts, StockAlert{
			ID:         item.ID,
			Name:       item.Name,
			Category:   item.Category,
			Quantity:   item.Quantity,
			MinStock:   item.MinStock,
			Unit:       item.Unit,
			Percentage: round1(stockPercentage(item)),
			Severity:   SeverityWarning,
		})
	}
	return newAlertList(alerts)
}

// LowMarginAlerts lists recipes below minMargin. Loss-making and near-zero
// margins (under 10%) are critical.
func LowMarginAlerts(recipes []models.Recipe, minMargin float64) AlertList[MarginAlert] {
	var alerts []MarginAlert
	for _, r := range recipes {
		if r.Margin >= minMargin {
			continue
		}
		severity := SeverityWarning
		if r.Margin < 10 {
			severity = SeverityCritical
		}
		alerts = append(alerts, MarginAlert{
			ID:               r.ID,
			Name:             r.Name,
			Category:         r.Category,
			Price:            r.Price,
			Cost:             r.Cost,
			Margin:           round1(r.Margin),
			RecommendedPrice: pricing.RoundMoney(pricing.RecommendedPrice(r.Cost)),
			Severity:         severity,
		})
	}
	return newAlertList(alerts)
}

type AllAlerts struct {
	CriticalStock    AlertList[StockAlert]  `json:"critical_stock"`
	LowStock         AlertList[StockAlert]  `json:"low_stock"`
	LowMarginRecipes AlertList[MarginAlert] `json:"low_margin_recipes"`
	TotalAlerts      int                    `json:"total_alerts"`
}

func BuildAllAlerts(items []models.InventoryItem, recipes []models.Recipe) AllAlerts {
	all := AllAlerts{
		CriticalStock:    CriticalStockAlerts(items),
		LowStock:         LowStockAlerts(items, DefaultLowStockThreshold),
		LowMarginRecipes: LowMarginAlerts(recipes, DefaultMinMargin),
	}
	all.TotalAlerts = all.CriticalStock.Count + all.LowStock.Count + all.LowMarginRecipes.Count
	return all
}
