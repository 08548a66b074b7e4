package models

import "time"

type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementWaste      MovementType = "WASTE"
	MovementSale       MovementType = "SALE"
	MovementReturn     MovementType = "RETURN"
)

// Sign is +1 for movements that add stock and -1 for those that remove it.
// Adjustments carry their own sign in Quantity.
func (t MovementType) Sign() float64 {
	switch t {
	case MovementOut, MovementWaste, MovementSale:
		return -1
	default:
		return 1
	}
}

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementWaste, MovementSale, MovementReturn:
		return true
	}
	return false
}

type InventoryMovement struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	InventoryItemID uint          `gorm:"index;not null" json:"inventory_item_id"`
	InventoryItem   InventoryItem `gorm:"foreignKey:InventoryItemID" json:"-"`
	LocationID      *uint         `gorm:"index" json:"location_id"`
	MovementType    MovementType  `gorm:"size:20;index;not null" json:"movement_type"`
	Quantity        float64       `gorm:"not null" json:"quantity"`
	Unit            string        `gorm:"size:20" json:"unit"`
	CostPerUnit     float64       `json:"cost_per_unit"`
	ReferenceType   string        `gorm:"size:30" json:"reference_type"` // sale, purchase_order...
	ReferenceID     *uint         `json:"reference_id"`
	Notes           string        `gorm:"size:255" json:"notes"`
	UserID          *uint         `json:"user_id"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
}
