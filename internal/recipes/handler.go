package recipes

import (
	"errors"
	"strings"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
)

type RecipeRequest struct {
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	Category        *string           `json:"category"`
	Price           *float64          `json:"price"`
	PreparationTime *int              `json:"preparation_time"`
	Servings        *int              `json:"servings"`
	Instructions    *string           `json:"instructions"`
	LocationID      *uint             `json:"location_id"`
	IsAvailable     *bool             `json:"is_available"`
	Ingredients     []IngredientInput `json:"ingredients"`
}

type RecipeResponse struct {
	models.Recipe
	UnitCost float64 `json:"unit_cost"`
}

func toResponse(r models.Recipe) RecipeResponse {
	return RecipeResponse{Recipe: r, UnitCost: pricing.RoundMoney(pricing.UnitCost(r.Cost, r.Servings))}
}

func recipeID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// apply copies the set fields of body onto recipe.
func (body RecipeRequest) apply(recipe *models.Recipe) error {
	if body.Name != nil {
		recipe.Name = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		recipe.Description = *body.Description
	}
	if body.Category != nil {
		recipe.Category = strings.TrimSpace(*body.Category)
	}
	if body.Price != nil {
		recipe.Price = *body.Price
	}
	if body.PreparationTime != nil {
		recipe.PreparationTime = body.PreparationTime
	}
	if body.Servings != nil {
		recipe.Servings = *body.Servings
	}
	if body.Instructions != nil {
		recipe.Instructions = *body.Instructions
	}
	if body.LocationID != nil {
		recipe.LocationID = body.LocationID
	}
	if body.IsAvailable != nil {
		recipe.IsAvailable = *body.IsAvailable
	}

	if recipe.Name == "" || recipe.Category == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and category are required")
	}
	if recipe.Price < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price cannot be negative")
	}
	if recipe.Servings < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "servings must be at least 1")
	}
	return nil
}

func costError(err error) error {
	if errors.Is(err, ErrUnknownIngredient) || errors.Is(err, ErrInvalidIngredient) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "could not cost recipe")
}

// GET /api/recipes?category=&location_id=&search=&available=true
func ListRecipesHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			Category:      c.Query("category"),
			Search:        strings.TrimSpace(c.Query("search")),
			AvailableOnly: c.QueryBool("available"),
		}
		if v := c.QueryInt("location_id"); v > 0 {
			loc := uint(v)
			f.LocationID = &loc
		}
		recipes, err := store.List(f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list recipes")
		}
		res := make([]RecipeResponse, 0, len(recipes))
		for _, r := range recipes {
			res = append(res, toResponse(r))
		}
		return c.JSON(res)
	}
}

func GetRecipeHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := recipeID(c)
		if err != nil {
			return err
		}
		recipe, err := store.Get(id)
		if errors.Is(err, ErrRecipeNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recipe")
		}
		return c.JSON(toResponse(*recipe))
	}
}

func CreateRecipeHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		recipe := models.Recipe{Servings: 1, IsAvailable: true}
		if err := body.apply(&recipe); err != nil {
			return err
		}
		if err := store.Cost(&recipe, body.Ingredients); err != nil {
			return costError(err)
		}

		if err := store.Create(&recipe, audit.ActorFrom(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create recipe")
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(recipe))
	}
}

// PUT /api/recipes/:id. Omitting "ingredients" keeps the current rows but
// still re-costs them against today's inventory prices.
func UpdateRecipeHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := recipeID(c)
		if err != nil {
			return err
		}
		recipe, err := store.Get(id)
		if errors.Is(err, ErrRecipeNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recipe")
		}
		before := *recipe

		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := body.apply(recipe); err != nil {
			return err
		}

		inputs := body.Ingredients
		if inputs == nil {
			for _, ing := range recipe.Ingredients {
				inputs = append(inputs, IngredientInput{
					InventoryItemID: ing.InventoryItemID,
					Name:            ing.Name,
					Quantity:        ing.Quantity,
					Unit:            ing.Unit,
					Cost:            ing.Cost,
				})
			}
		}
		if err := store.Cost(recipe, inputs); err != nil {
			return costError(err)
		}

		if err := store.Update(recipe, before, audit.ActorFrom(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update recipe")
		}
		return c.JSON(toResponse(*recipe))
	}
}

func DeleteRecipeHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := recipeID(c)
		if err != nil {
			return err
		}
		err = store.Delete(id, audit.ActorFrom(c))
		if errors.Is(err, ErrRecipeNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete recipe")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/recipes/:id/availability?quantity=2
func AvailabilityHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := recipeID(c)
		if err != nil {
			return err
		}
		quantity := c.QueryInt("quantity", 1)
		if quantity < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be at least 1")
		}

		recipe, err := store.Get(id)
		if errors.Is(err, ErrRecipeNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recipe")
		}

		availability, err := store.CheckAvailability(*recipe, quantity)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check stock")
		}
		return c.JSON(availability)
	}
}
