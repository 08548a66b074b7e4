package recipes

import (
	"testing"

	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uptr(v uint) *uint { return &v }

var stock = map[uint]models.InventoryItem{
	1: {ID: 1, Name: "Pollo", Unit: "kg", CostPerUnit: 20, Quantity: 3},
	2: {ID: 2, Name: "Papa", Unit: "kg", CostPerUnit: 4, Quantity: 0.5},
}

func TestBuildDraft_BoundRowsUseInventoryCost(t *testing.T) {
	draft, err := BuildDraft(25, []IngredientInput{
		{InventoryItemID: uptr(1), Name: "ignored", Quantity: 0.25, Unit: "g", Cost: 999},
		{Name: "Aji", Quantity: 1, Unit: "u", Cost: 0.52},
	}, stock)
	require.NoError(t, err)

	require.Len(t, draft.Rows, 2)
	assert.Equal(t, "Pollo", draft.Rows[0].Name)
	assert.Equal(t, "kg", draft.Rows[0].Unit)
	assert.InDelta(t, 5.0, draft.Rows[0].Cost, 1e-9)
	assert.Equal(t, "u", draft.Rows[1].Unit)
	assert.InDelta(t, 5.52, draft.TotalCost(), 1e-9)
	assert.InDelta(t, 77.92, draft.Margin(), 1e-9)
}

func TestBuildDraft_Errors(t *testing.T) {
	_, err := BuildDraft(10, []IngredientInput{{InventoryItemID: uptr(9), Quantity: 1}}, stock)
	assert.ErrorIs(t, err, ErrUnknownIngredient)

	_, err = BuildDraft(10, []IngredientInput{{Name: "Sal", Quantity: 0}}, stock)
	assert.ErrorIs(t, err, ErrInvalidIngredient)

	_, err = BuildDraft(10, []IngredientInput{{Name: " ", Quantity: 1}}, stock)
	assert.ErrorIs(t, err, ErrInvalidIngredient)

	_, err = BuildDraft(10, []IngredientInput{{Name: "Sal", Quantity: 1, Cost: -1}}, stock)
	assert.ErrorIs(t, err, ErrInvalidIngredient)
}

func TestApplyDraft(t *testing.T) {
	draft, err := BuildDraft(10, []IngredientInput{
		{InventoryItemID: uptr(2), Quantity: 0.333},
	}, stock)
	require.NoError(t, err)

	recipe := models.Recipe{Price: 10}
	ApplyDraft(&recipe, draft)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, 1.33, recipe.Ingredients[0].Cost)
	assert.Equal(t, 1.33, recipe.Cost)
	assert.Equal(t, 86.68, recipe.Margin)
}

func TestApplyDraft_LossMakingRecipeKeepsNegativeMargin(t *testing.T) {
	draft, err := BuildDraft(4, []IngredientInput{{InventoryItemID: uptr(1), Quantity: 0.25}}, stock)
	require.NoError(t, err)

	recipe := models.Recipe{Price: 4}
	ApplyDraft(&recipe, draft)
	assert.Equal(t, -25.0, recipe.Margin)
}

func TestRequirements(t *testing.T) {
	recipe := models.Recipe{
		Servings: 4,
		Ingredients: []models.RecipeIngredient{
			{InventoryItemID: uptr(1), Quantity: 1},
			{InventoryItemID: uptr(1), Quantity: 1},
			{InventoryItemID: uptr(2), Quantity: 2},
			{Name: "Sal", Quantity: 1},
		},
	}
	req := Requirements(recipe, 2)
	assert.Equal(t, map[uint]float64{1: 1, 2: 1}, req)

	recipe.Servings = 0
	assert.Equal(t, map[uint]float64{1: 4, 2: 4}, Requirements(recipe, 2))
}

func TestCheckAvailability(t *testing.T) {
	missing := CheckAvailability(map[uint]float64{1: 1, 2: 2, 3: 1}, stock)
	require.Len(t, missing, 2)
	assert.Equal(t, uint(2), missing[0].InventoryItemID)
	assert.Equal(t, 1.5, missing[0].Shortage)
	assert.Equal(t, uint(3), missing[1].InventoryItemID)
	assert.Equal(t, 0.0, missing[1].Available)

	assert.Empty(t, CheckAvailability(map[uint]float64{1: 3}, stock))
}

func TestRecipeRequest_Apply(t *testing.T) {
	name, category := "Sajta", "Platos"
	price, servings, zero := 25.0, 2, 0

	recipe := models.Recipe{Servings: 1}
	require.NoError(t, RecipeRequest{Name: &name, Category: &category, Price: &price, Servings: &servings}.apply(&recipe))
	assert.Equal(t, 2, recipe.Servings)

	err := RecipeRequest{Servings: &zero}.apply(&recipe)
	assert.Error(t, err)

	negative := -1.0
	err = RecipeRequest{Price: &negative}.apply(&models.Recipe{Name: "a", Category: "b", Servings: 1})
	assert.Error(t, err)
}

func TestSetFreeRow(t *testing.T) {
	draft := &pricing.RecipeDraft{Price: 20}
	free := draft.AddIngredient()
	require.NoError(t, setFreeRow(draft, free, "Sal", "", 0.01, 0.05))
	assert.Equal(t, "Sal", draft.Rows[free].Name)
	assert.Equal(t, 0.05, draft.Rows[free].Cost)

	bound := draft.AddIngredient()
	require.NoError(t, draft.SelectInventoryItem(bound, pricing.InventoryRef{ID: 1, Name: "Pollo", Unit: "kg", CostPerUnit: 20}))
	assert.ErrorIs(t, setFreeRow(draft, bound, "Pollo", "g", 1, 3), pricing.ErrBoundRow)

	assert.ErrorIs(t, setFreeRow(draft, 9, "Ajo", "", 1, 1), pricing.ErrRowOutOfRange)
}
