package models

import "time"

type Promotion struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"size:100;not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	DiscountType         string    `gorm:"size:20;not null" json:"discount_type"` // percentage, fixed_amount, buy_x_get_y
	DiscountValue        float64   `gorm:"not null;default:0" json:"discount_value"`
	MinPurchase          *float64  `json:"min_purchase"`
	MaxDiscount          *float64  `json:"max_discount"`
	BuyQuantity          int       `gorm:"not null;default:0" json:"buy_quantity"`
	GetQuantity          int       `gorm:"not null;default:0" json:"get_quantity"`
	StartDate            time.Time `gorm:"index;not null" json:"start_date"`
	EndDate              time.Time `gorm:"index;not null" json:"end_date"`
	IsActive             bool      `gorm:"not null" json:"is_active"`
	ApplicableTo         string    `gorm:"size:20;not null;default:all" json:"applicable_to"`
	ApplicableRecipeIDs  []uint    `gorm:"serializer:json;type:jsonb" json:"applicable_recipe_ids"`
	ApplicableCategories []string  `gorm:"serializer:json;type:jsonb" json:"applicable_categories"`
	LocationID           *uint     `gorm:"index" json:"location_id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (p Promotion) ActiveAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartDate) && !t.After(p.EndDate)
}
