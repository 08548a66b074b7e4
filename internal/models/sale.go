package models

import "time"

type SaleType string

const (
	SaleLocal    SaleType = "LOCAL"
	SaleDelivery SaleType = "DELIVERY"
	SaleTakeaway SaleType = "TAKEAWAY"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentQR   PaymentMethod = "QR"
	PaymentCard PaymentMethod = "CARD"
)

type SaleStatus string

const (
	SaleCompleted SaleStatus = "COMPLETED"
	SaleCancelled SaleStatus = "CANCELLED"
)

type Sale struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	SaleNumber      string         `gorm:"size:30;uniqueIndex;not null" json:"sale_number"`
	LocationID      uint           `gorm:"index;not null" json:"location_id"`
	TableNumber     string         `gorm:"size:20" json:"table_number"`
	WaiterID        *uint          `json:"waiter_id"`
	SaleType        SaleType       `gorm:"size:20;not null;default:LOCAL" json:"sale_type"`
	DeliveryService string         `gorm:"size:50" json:"delivery_service"`
	CustomerName    string         `gorm:"size:100" json:"customer_name"`
	CustomerPhone   string         `gorm:"size:30" json:"customer_phone"`
	Subtotal        float64        `gorm:"not null" json:"subtotal"`
	DiscountAmount  float64        `gorm:"not null;default:0" json:"discount_amount"`
	Tax             float64        `gorm:"not null;default:0" json:"tax"`
	Total           float64        `gorm:"not null" json:"total"`
	PaymentMethod   PaymentMethod  `gorm:"size:20" json:"payment_method"`
	Notes           string         `gorm:"type:text" json:"notes"`
	Status          SaleStatus     `gorm:"size:20;not null;default:COMPLETED" json:"status"`
	UserID          *uint          `gorm:"index" json:"user_id"`
	Items           []SaleItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Discounts       []SaleDiscount `gorm:"constraint:OnDelete:CASCADE" json:"discounts,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}

type SaleItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SaleID    uint    `gorm:"index;not null" json:"sale_id"`
	RecipeID  *uint   `gorm:"index" json:"recipe_id"`
	ItemName  string  `gorm:"size:100;not null" json:"item_name"`
	Category  string  `gorm:"size:50" json:"category"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Total     float64 `gorm:"not null" json:"total"`
}

type SaleDiscount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SaleID         uint      `gorm:"index;not null" json:"sale_id"`
	PromotionID    *uint     `gorm:"index" json:"promotion_id"`
	DiscountType   string    `gorm:"size:20;not null" json:"discount_type"` // promotion, manual
	DiscountAmount float64   `gorm:"not null" json:"discount_amount"`
	Reason         string    `gorm:"size:255" json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}
