package recipes

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
)

var (
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrUnknownIngredient = errors.New("ingredient references an unknown inventory item")
	ErrInvalidIngredient = errors.New("ingredient needs a name and a positive quantity")
)

type IngredientInput struct {
	InventoryItemID *uint   `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Cost            float64 `json:"cost"`
}

// BuildDraft replays the submitted ingredients onto a RecipeDraft. Rows linked
// to inventory take their name, unit and cost from the current item, so a
// client cannot submit a stale or made-up cost for them.
func BuildDraft(price float64, inputs []IngredientInput, items map[uint]models.InventoryItem) (*pricing.RecipeDraft, error) {
	draft := &pricing.RecipeDraft{Price: price}
	for n, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("ingredient %d: %w", n+1, ErrInvalidIngredient)
		}
		i := draft.AddIngredient()

		if in.InventoryItemID != nil {
			item, ok := items[*in.InventoryItemID]
			if !ok {
				return nil, fmt.Errorf("ingredient %d: %w", n+1, ErrUnknownIngredient)
			}
			if err := draft.SelectInventoryItem(i, pricing.InventoryRef{
				ID:          item.ID,
				Name:        item.Name,
				Unit:        item.Unit,
				CostPerUnit: item.CostPerUnit,
			}); err != nil {
				return nil, err
			}
			if err := draft.SetQuantity(i, in.Quantity); err != nil {
				return nil, err
			}
			continue
		}

		name := strings.TrimSpace(in.Name)
		if name == "" || in.Cost < 0 {
			return nil, fmt.Errorf("ingredient %d: %w", n+1, ErrInvalidIngredient)
		}
		if err := setFreeRow(draft, i, name, strings.TrimSpace(in.Unit), in.Quantity, in.Cost); err != nil {
			return nil, fmt.Errorf("ingredient %d: %w", n+1, err)
		}
	}
	return draft, nil
}

// setFreeRow fills a row that is not linked to inventory. An empty unit keeps
// the row's default.
func setFreeRow(draft *pricing.RecipeDraft, i int, name, unit string, quantity, cost float64) error {
	if err := draft.SetName(i, name); err != nil {
		return err
	}
	if unit != "" {
		if err := draft.SetUnit(i, unit); err != nil {
			return err
		}
	}
	if err := draft.SetQuantity(i, quantity); err != nil {
		return err
	}
	return draft.SetCost(i, cost)
}

// ApplyDraft copies the draft's ingredients and totals onto recipe.
func ApplyDraft(recipe *models.Recipe, draft *pricing.RecipeDraft) {
	recipe.Ingredients = make([]models.RecipeIngredient, 0, len(draft.Rows))
	for _, r := range draft.Rows {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			InventoryItemID: r.InventoryItemID,
			Name:            r.Name,
			Quantity:        r.Quantity,
			Unit:            r.Unit,
			Cost:            pricing.RoundMoney(r.Cost),
		})
	}
	recipe.Cost = pricing.RoundMoney(draft.TotalCost())
	recipe.Margin = pricing.RoundMoney(draft.Margin())
}

func ingredientItemIDs(inputs []IngredientInput) []uint {
	var ids []uint
	for _, in := range inputs {
		if in.InventoryItemID != nil {
			ids = append(ids, *in.InventoryItemID)
		}
	}
	return ids
}

// Requirements is the inventory each item needs to produce quantity orders of
// recipe: ingredient quantity * quantity / servings.
func Requirements(recipe models.Recipe, quantity int) map[uint]float64 {
	servings := recipe.Servings
	if servings <= 0 {
		servings = 1
	}
	req := map[uint]float64{}
	for _, ing := range recipe.Ingredients {
		if ing.InventoryItemID == nil {
			continue
		}
		req[*ing.InventoryItemID] += ing.Quantity * float64(quantity) / float64(servings)
	}
	return req
}

type Shortage struct {
	InventoryItemID uint    `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Unit            string  `json:"unit"`
	Required        float64 `json:"required"`
	Available       float64 `json:"available"`
	Shortage        float64 `json:"shortage"`
}

type Availability struct {
	RecipeID  uint       `json:"recipe_id"`
	Quantity  int        `json:"quantity"`
	Available bool       `json:"available"`
	Missing   []Shortage `json:"missing"`
}

// CheckAvailability compares required amounts against stock. Items absent
// from stock count as zero.
func CheckAvailability(required map[uint]float64, stock map[uint]models.InventoryItem) []Shortage {
	missing := []Shortage{}
	for id, need := range required {
		item := stock[id]
		if item.Quantity+1e-9 >= need {
			continue
		}
		missing = append(missing, Shortage{
			InventoryItemID: id,
			Name:            item.Name,
			Unit:            item.Unit,
			Required:        need,
			Available:       item.Quantity,
			Shortage:        pricing.RoundMoney(need - item.Quantity),
		})
	}
	sort.Slice(missing, func(a, b int) bool { return missing[a].InventoryItemID < missing[b].InventoryItemID })
	return missing
}
