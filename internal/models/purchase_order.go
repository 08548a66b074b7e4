package models

import "time"

type PurchaseOrderStatus string

const (
	POPending   PurchaseOrderStatus = "PENDING"
	POApproved  PurchaseOrderStatus = "APPROVED"
	POReceived  PurchaseOrderStatus = "RECEIVED"
	POCancelled PurchaseOrderStatus = "CANCELLED"
)

type PurchaseOrder struct {
	ID                   uint                `gorm:"primaryKey" json:"id"`
	OrderNumber          string              `gorm:"size:30;uniqueIndex;not null" json:"order_number"`
	SupplierID           uint                `gorm:"index;not null" json:"supplier_id"`
	Supplier             *Supplier           `json:"supplier,omitempty"`
	LocationID           uint                `gorm:"index;not null" json:"location_id"`
	Status               PurchaseOrderStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
	TotalAmount          float64             `gorm:"not null" json:"total_amount"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date"`
	ReceivedDate         *time.Time          `json:"received_date"`
	Notes                string              `gorm:"type:text" json:"notes"`
	CreatedBy            *uint               `json:"created_by"`
	ApprovedBy           *uint               `json:"approved_by"`
	Items                []PurchaseOrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt            time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	PurchaseOrderID  uint    `gorm:"index;not null" json:"purchase_order_id"`
	InventoryItemID  *uint   `gorm:"index" json:"inventory_item_id"`
	ItemName         string  `gorm:"size:100;not null" json:"item_name"`
	Quantity         float64 `gorm:"not null" json:"quantity"`
	Unit             string  `gorm:"size:20;not null" json:"unit"`
	UnitPrice        float64 `gorm:"not null" json:"unit_price"`
	Total            float64 `gorm:"not null" json:"total"`
	ReceivedQuantity float64 `gorm:"not null;default:0" json:"received_quantity"`
}
