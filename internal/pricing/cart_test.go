package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeID(id uint) *uint { return &id }

func TestCart_AddItem(t *testing.T) {
	cart := NewCart()
	burger := CartItem{Key: "recipe:1", RecipeID: recipeID(1), Name: "Burger", UnitPrice: 35}
	soda := CartItem{Key: "recipe:2", RecipeID: recipeID(2), Name: "Soda", UnitPrice: 8}

	require.NoError(t, cart.AddItem(burger))
	require.NoError(t, cart.AddItem(soda))
	require.NoError(t, cart.AddItem(burger))

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Burger", lines[0].ItemName)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestCart_AddItemRejectsNegativePrice(t *testing.T) {
	cart := NewCart()
	err := cart.AddItem(CartItem{Key: "x", Name: "Broken", UnitPrice: -1})
	assert.ErrorIs(t, err, ErrNegativePrice)
	assert.Equal(t, 0, cart.Len())
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		quantity  int
		wantErr   error
		wantLines int
		wantQty   int
	}{
		{name: "set_quantity", key: "a", quantity: 5, wantLines: 2, wantQty: 5},
		{name: "zero_removes_line", key: "a", quantity: 0, wantLines: 1},
		{name: "negative_removes_line", key: "a", quantity: -3, wantLines: 1},
		{name: "unknown_line", key: "zzz", quantity: 2, wantErr: ErrLineNotFound, wantLines: 2, wantQty: 1},
		{name: "unknown_line_zero_is_noop", key: "zzz", quantity: 0, wantLines: 2, wantQty: 1},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cart := NewCart()
			require.NoError(t, cart.AddItem(CartItem{Key: "a", Name: "A", UnitPrice: 10}))
			require.NoError(t, cart.AddItem(CartItem{Key: "b", Name: "B", UnitPrice: 4}))

			err := cart.UpdateQuantity(testCase.key, testCase.quantity)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}

			lines := cart.Lines()
			assert.Len(t, lines, testCase.wantLines)
			if testCase.wantLines == 2 {
				assert.Equal(t, testCase.wantQty, lines[0].Quantity)
			} else {
				assert.Equal(t, "b", lines[0].Key)
			}
		})
	}
}

func TestCart_RemoveItem(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(CartItem{Key: "a", Name: "A", UnitPrice: 10}))
	cart.RemoveItem("a")
	cart.RemoveItem("missing")
	assert.Equal(t, 0, cart.Len())
}

func TestCart_LinesIsACopy(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(CartItem{Key: "a", Name: "A", UnitPrice: 10}))
	lines := cart.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(CartItem{Key: "a", Name: "A", UnitPrice: 10}))
	cart.Clear()
	assert.Equal(t, 0, cart.Len())
	assert.Equal(t, SaleTotals{}, cart.Totals(0, DefaultTaxRate))
}
