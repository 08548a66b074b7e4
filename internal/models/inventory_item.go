package models

import "time"

type StockStatus string

const (
	StockOK       StockStatus = "ok"
	StockLow      StockStatus = "low"
	StockCritical StockStatus = "critical"
)

type InventoryItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null;index" json:"name"`
	Category    string     `gorm:"size:50;not null;index" json:"category"`
	Quantity    float64    `gorm:"not null;default:0" json:"quantity"`
	Unit        string     `gorm:"size:20;not null" json:"unit"` // kg, l, unit...
	MinStock    float64    `gorm:"not null;default:0" json:"min_stock"`
	MaxStock    *float64   `json:"max_stock"`
	CostPerUnit float64    `gorm:"not null;default:0" json:"cost_per_unit"`
	SupplierID  *uint      `gorm:"index" json:"supplier_id"`
	LocationID  *uint      `gorm:"index" json:"location_id"`
	Barcode     *string    `gorm:"size:64;uniqueIndex" json:"barcode"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Status classifies stock against the minimum: critical at or below it,
// low up to 150% of it.
func (i InventoryItem) Status() StockStatus {
	switch {
	case i.Quantity <= i.MinStock:
		return StockCritical
	case i.Quantity <= i.MinStock*1.5:
		return StockLow
	default:
		return StockOK
	}
}
