package purchasing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("purchase order not found")
	ErrInvalidTransition = errors.New("invalid status change")
	ErrNoItems           = errors.New("a purchase order needs at least one item")
	ErrInvalidItem       = errors.New("items need a name, a unit, a positive quantity and a non-negative price")
	ErrOverReceived      = errors.New("received quantity is out of range")
)

// NewOrderNumber returns OC-YYYYMMDD-XXXXXX.
func NewOrderNumber(t time.Time) string {
	return "OC-" + t.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:6])
}

var transitions = map[models.PurchaseOrderStatus][]models.PurchaseOrderStatus{
	models.POPending:  {models.POApproved, models.POCancelled},
	models.POApproved: {models.POReceived, models.POCancelled},
}

func CanTransition(from, to models.PurchaseOrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ItemInput struct {
	InventoryItemID *uint   `json:"inventory_item_id"`
	ItemName        string  `json:"item_name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitPrice       float64 `json:"unit_price"`
}

// BuildItems validates inputs and returns the order lines with their total.
func BuildItems(inputs []ItemInput) ([]models.PurchaseOrderItem, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, ErrNoItems
	}
	items := make([]models.PurchaseOrderItem, 0, len(inputs))
	var total float64
	for n, in := range inputs {
		name := strings.TrimSpace(in.ItemName)
		unit := strings.TrimSpace(in.Unit)
		if name == "" || unit == "" || in.Quantity <= 0 || in.UnitPrice < 0 {
			return nil, 0, fmt.Errorf("item %d: %w", n+1, ErrInvalidItem)
		}
		line := pricing.RoundMoney(in.Quantity * in.UnitPrice)
		items = append(items, models.PurchaseOrderItem{
			InventoryItemID: in.InventoryItemID,
			ItemName:        name,
			Quantity:        in.Quantity,
			Unit:            unit,
			UnitPrice:       in.UnitPrice,
			Total:           line,
		})
		total += line
	}
	return items, pricing.RoundMoney(total), nil
}

// receivedQuantity picks what arrived for an order line. Lines without an
// explicit count are received in full.
func receivedQuantity(item models.PurchaseOrderItem, received map[uint]float64) (float64, error) {
	q, ok := received[item.ID]
	if !ok {
		return item.Quantity, nil
	}
	if q < 0 || q > item.Quantity {
		return 0, fmt.Errorf("%s: %w", item.ItemName, ErrOverReceived)
	}
	return q, nil
}
