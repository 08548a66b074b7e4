package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMargin(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		cost  float64
		want  float64
	}{
		{name: "healthy", price: 50, cost: 20, want: 60},
		{name: "zero_price", price: 0, cost: 20, want: 0},
		{name: "zero_cost", price: 50, cost: 0, want: 0},
		{name: "negative_price", price: -10, cost: 5, want: 0},
		{name: "loss_not_guarded", price: 20, cost: 50, want: -150},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.InDelta(t, testCase.want, ComputeMargin(testCase.price, testCase.cost), 1e-9)
		})
	}
}

func TestRecipeDraft_AddIngredient(t *testing.T) {
	var d RecipeDraft
	i := d.AddIngredient()
	assert.Equal(t, 0, i)
	assert.Equal(t, IngredientRow{Unit: DefaultIngredientUnit}, d.Rows[0])
}

func TestRecipeDraft_BoundRowTracksInventory(t *testing.T) {
	d := RecipeDraft{Price: 40}
	i := d.AddIngredient()
	require.NoError(t, d.SetQuantity(i, 0.5))
	require.NoError(t, d.SelectInventoryItem(i, InventoryRef{ID: 7, Name: "Beef", Unit: "kg", CostPerUnit: 30}))

	row := d.Rows[i]
	assert.True(t, row.Bound())
	assert.Equal(t, "Beef", row.Name)
	assert.Equal(t, "kg", row.Unit)
	assert.InDelta(t, 15, row.Cost, 1e-9)

	require.NoError(t, d.SetQuantity(i, 0.25))
	assert.InDelta(t, 7.5, d.Rows[i].Cost, 1e-9)

	assert.ErrorIs(t, d.SetCost(i, 1), ErrBoundRow)
	assert.ErrorIs(t, d.SetUnit(i, "g"), ErrBoundRow)
	assert.InDelta(t, 7.5, d.Rows[i].Cost, 1e-9)
}

func TestRecipeDraft_ManualRow(t *testing.T) {
	var d RecipeDraft
	i := d.AddIngredient()
	require.NoError(t, d.SetName(i, "Salt"))
	require.NoError(t, d.SetCost(i, 0.4))
	require.NoError(t, d.SetQuantity(i, 3))
	require.NoError(t, d.SetUnit(i, "g"))
	assert.InDelta(t, 0.4, d.Rows[i].Cost, 1e-9)
	assert.Equal(t, "g", d.Rows[i].Unit)
}

func TestRecipeDraft_Unbind(t *testing.T) {
	var d RecipeDraft
	i := d.AddIngredient()
	require.NoError(t, d.SelectInventoryItem(i, InventoryRef{ID: 1, Name: "Rice", Unit: "kg", CostPerUnit: 8}))
	require.NoError(t, d.Unbind(i))
	assert.False(t, d.Rows[i].Bound())
	assert.NoError(t, d.SetCost(i, 3))
}

func TestRecipeDraft_OutOfRange(t *testing.T) {
	var d RecipeDraft
	assert.ErrorIs(t, d.SetQuantity(0, 1), ErrRowOutOfRange)
	assert.ErrorIs(t, d.SelectInventoryItem(-1, InventoryRef{}), ErrRowOutOfRange)
	assert.ErrorIs(t, d.RemoveIngredient(3), ErrRowOutOfRange)
}

func TestRecipeDraft_TotalsAndMargin(t *testing.T) {
	d := RecipeDraft{Price: 50}
	a := d.AddIngredient()
	b := d.AddIngredient()
	require.NoError(t, d.SetCost(a, 12))
	require.NoError(t, d.SetCost(b, 8))

	assert.InDelta(t, 20, d.TotalCost(), 1e-9)
	assert.InDelta(t, 60, d.Margin(), 1e-9)

	require.NoError(t, d.RemoveIngredient(a))
	assert.InDelta(t, 8, d.TotalCost(), 1e-9)
}

func TestComputeTotalCost_OrderIndependent(t *testing.T) {
	rows := []IngredientRow{{Cost: 1.1}, {Cost: 2.2}, {Cost: 3.3}}
	reversed := []IngredientRow{rows[2], rows[1], rows[0]}
	assert.InDelta(t, ComputeTotalCost(rows), ComputeTotalCost(reversed), 1e-9)
}

func TestUnitCost(t *testing.T) {
	assert.InDelta(t, 5, UnitCost(20, 4), 1e-9)
	assert.InDelta(t, 20, UnitCost(20, 0), 1e-9)
	assert.InDelta(t, 26, RecommendedPrice(20), 1e-9)
}
