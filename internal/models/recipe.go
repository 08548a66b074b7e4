package models

import "time"

type Recipe struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	Name            string             `gorm:"size:100;not null;index" json:"name"`
	Description     string             `gorm:"type:text" json:"description"`
	Category        string             `gorm:"size:50;not null;index" json:"category"`
	Price           float64            `gorm:"not null" json:"price"`
	Cost            float64            `gorm:"not null;default:0" json:"cost"`
	Margin          float64            `gorm:"not null;default:0" json:"margin"`
	PreparationTime *int               `json:"preparation_time"` // minutes
	Servings        int                `gorm:"not null;default:1" json:"servings"`
	Instructions    string             `gorm:"type:text" json:"instructions"`
	LocationID      *uint              `gorm:"index" json:"location_id"`
	IsAvailable     bool               `gorm:"not null" json:"is_available"`
	Ingredients     []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type RecipeIngredient struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	RecipeID        uint           `gorm:"index;not null" json:"recipe_id"`
	InventoryItemID *uint          `gorm:"index" json:"inventory_item_id"`
	InventoryItem   *InventoryItem `json:"-"`
	Name            string         `gorm:"size:100;not null" json:"name"`
	Quantity        float64        `gorm:"not null" json:"quantity"`
	Unit            string         `gorm:"size:20;not null" json:"unit"`
	Cost            float64        `gorm:"not null" json:"cost"`
}
