package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryItem_Status(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		minStock float64
		want     StockStatus
	}{
		{name: "below_min", quantity: 2, minStock: 5, want: StockCritical},
		{name: "at_min", quantity: 5, minStock: 5, want: StockCritical},
		{name: "low_band", quantity: 7.5, minStock: 5, want: StockLow},
		{name: "healthy", quantity: 7.6, minStock: 5, want: StockOK},
		{name: "empty_without_min", quantity: 0, minStock: 0, want: StockCritical},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			item := InventoryItem{Quantity: testCase.quantity, MinStock: testCase.minStock}
			assert.Equal(t, testCase.want, item.Status())
		})
	}
}

func TestMovementType_Sign(t *testing.T) {
	assert.Equal(t, -1.0, MovementSale.Sign())
	assert.Equal(t, -1.0, MovementWaste.Sign())
	assert.Equal(t, 1.0, MovementIn.Sign())
	assert.Equal(t, 1.0, MovementReturn.Sign())
	assert.True(t, MovementAdjustment.Valid())
	assert.False(t, MovementType("LOST").Valid())
}

func TestRole_Has(t *testing.T) {
	cashier := Role{Name: RoleCashier, Permissions: []string{PermSalesCreate}}
	assert.True(t, cashier.Has(PermSalesCreate))
	assert.False(t, cashier.Has(PermReportsView))
	assert.True(t, Role{Name: RoleAdmin}.Has(PermUsersManage))
}
