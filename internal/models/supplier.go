package models

import "time"

type Supplier struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null;index" json:"name"`
	ContactName  string    `gorm:"size:100" json:"contact_name"`
	Phone        string    `gorm:"size:50" json:"phone"`
	Email        string    `gorm:"size:100" json:"email"`
	Address      string    `gorm:"size:255" json:"address"`
	City         string    `gorm:"size:100" json:"city"`
	Zone         string    `gorm:"size:100" json:"zone"`
	TaxID        string    `gorm:"size:50" json:"tax_id"`
	PaymentTerms string    `gorm:"size:50" json:"payment_terms"`
	Rating       *float64  `json:"rating"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
