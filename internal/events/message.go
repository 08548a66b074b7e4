package events

import "time"

const (
	TypeSaleCompleted = "sale.completed"
	TypeSaleVoided    = "sale.voided"
)

// SaleEvent is the payload written to the sales topic.
type SaleEvent struct {
	Type          string    `json:"type"`
	SaleID        uint      `json:"sale_id"`
	SaleNumber    string    `json:"sale_number"`
	LocationID    uint      `json:"location_id"`
	UserID        *uint     `json:"user_id,omitempty"`
	Total         float64   `json:"total"`
	Items         int       `json:"items"`
	PaymentMethod string    `json:"payment_method"`
	OccurredAt    time.Time `json:"occurred_at"`
}
