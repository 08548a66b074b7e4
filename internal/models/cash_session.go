package models

import "time"

type CashSessionStatus string

const (
	CashSessionOpen   CashSessionStatus = "OPEN"
	CashSessionClosed CashSessionStatus = "CLOSED"
)

// CashSession is one cash-register shift of a user at a location.
type CashSession struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	LocationID    uint              `gorm:"index;not null" json:"location_id"`
	UserID        uint              `gorm:"index;not null" json:"user_id"`
	OpeningAmount float64           `gorm:"not null" json:"opening_amount"`
	CountedAmount *float64          `json:"counted_amount"`
	SystemAmount  *float64          `json:"system_amount"`
	Difference    *float64          `json:"difference"`
	Status        CashSessionStatus `gorm:"size:10;index;not null" json:"status"`
	OpenedAt      time.Time         `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time        `json:"closed_at"`
	Comments      string            `gorm:"size:255" json:"comments"`
}
