package promotions

import (
	"errors"
	"strings"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
)

type PromotionRequest struct {
	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	DiscountType         *string    `json:"discount_type"`
	DiscountValue        *float64   `json:"discount_value"`
	MinPurchase          *float64   `json:"min_purchase"`
	MaxDiscount          *float64   `json:"max_discount"`
	BuyQuantity          *int       `json:"buy_quantity"`
	GetQuantity          *int       `json:"get_quantity"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	IsActive             *bool      `json:"is_active"`
	ApplicableTo         *string    `json:"applicable_to"`
	ApplicableRecipeIDs  []uint     `json:"applicable_recipe_ids"`
	ApplicableCategories []string   `json:"applicable_categories"`
	LocationID           *uint      `json:"location_id"`
}

func (body PromotionRequest) apply(p *models.Promotion) {
	if body.Name != nil {
		p.Name = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		p.Description = *body.Description
	}
	if body.DiscountType != nil {
		p.DiscountType = *body.DiscountType
	}
	if body.DiscountValue != nil {
		p.DiscountValue = *body.DiscountValue
	}
	if body.MinPurchase != nil {
		p.MinPurchase = body.MinPurchase
	}
	if body.MaxDiscount != nil {
		p.MaxDiscount = body.MaxDiscount
	}
	if body.BuyQuantity != nil {
		p.BuyQuantity = *body.BuyQuantity
	}
	if body.GetQuantity != nil {
		p.GetQuantity = *body.GetQuantity
	}
	if body.StartDate != nil {
		p.StartDate = *body.StartDate
	}
	if body.EndDate != nil {
		p.EndDate = *body.EndDate
	}
	if body.IsActive != nil {
		p.IsActive = *body.IsActive
	}
	if body.ApplicableTo != nil {
		p.ApplicableTo = *body.ApplicableTo
	}
	if body.ApplicableRecipeIDs != nil {
		p.ApplicableRecipeIDs = body.ApplicableRecipeIDs
	}
	if body.ApplicableCategories != nil {
		p.ApplicableCategories = body.ApplicableCategories
	}
	if body.LocationID != nil {
		p.LocationID = body.LocationID
	}
}

type ResolveRequest struct {
	LocationID *uint              `json:"location_id"`
	Subtotal   float64            `json:"subtotal"`
	Items      []pricing.CartLine `json:"items"`
}

type ResolveResponse struct {
	PromotionID uint    `json:"promotion_id"`
	Name        string  `json:"name"`
	Discount    float64 `json:"discount"`
}

func promotionID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func queryLocation(c *fiber.Ctx) *uint {
	if v := c.QueryInt("location_id"); v > 0 {
		loc := uint(v)
		return &loc
	}
	return nil
}

func serviceError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrPromotionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidDates), errors.Is(err, ErrInvalidScope), errors.Is(err, ErrNotActive),
		errors.Is(err, pricing.ErrUnknownDiscountType), errors.Is(err, pricing.ErrInvalidDiscount),
		errors.Is(err, pricing.ErrInvalidPercentage), errors.Is(err, pricing.ErrInvalidBuyXGetY):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

// GET /api/promotions?location_id=&active=true
func ListPromotionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		promos, err := svc.List(Filter{LocationID: queryLocation(c), ActiveOnly: c.QueryBool("active")})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list promotions")
		}
		return c.JSON(promos)
	}
}

// GET /api/promotions/active/current?location_id=
func ActivePromotionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		promos, err := svc.Active(c.Context(), queryLocation(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list active promotions")
		}
		return c.JSON(promos)
	}
}

func GetPromotionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := promotionID(c)
		if err != nil {
			return err
		}
		p, err := svc.Get(id)
		if err != nil {
			return serviceError(err, "could not load promotion")
		}
		return c.JSON(p)
	}
}

func CreatePromotionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PromotionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		p := models.Promotion{IsActive: true, ApplicableTo: string(pricing.ScopeAll)}
		body.apply(&p)
		if p.Name == "" || body.StartDate == nil || body.EndDate == nil {
			return fiber.NewError(fiber.StatusBadRequest, "name, start_date and end_date are required")
		}

		if err := svc.Create(c.Context(), &p, audit.ActorFrom(c)); err != nil {
			return serviceError(err, "could not create promotion")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func UpdatePromotionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := promotionID(c)
		if err != nil {
			return err
		}
		p, err := svc.Get(id)
		if err != nil {
			return serviceError(err, "could not load promotion")
		}
		before := *p

		var body PromotionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.apply(p)
		if p.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		if err := svc.Update(c.Context(), p, before, audit.ActorFrom(c)); err != nil {
			return serviceError(err, "could not update promotion")
		}
		return c.JSON(p)
	}
}

func DeletePromotionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := promotionID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Context(), id, audit.ActorFrom(c)); err != nil {
			return serviceError(err, "could not delete promotion")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/promotions/:id/resolve
func ResolvePromotionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := promotionID(c)
		if err != nil {
			return err
		}
		var body ResolveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.LocationID == nil {
			body.LocationID = auth.CurrentLocationID(c)
		}
		p, discount, err := svc.Resolve(id, body.LocationID, body.Subtotal, body.Items)
		if err != nil {
			return serviceError(err, "could not resolve promotion")
		}
		return c.JSON(ResolveResponse{PromotionID: p.ID, Name: p.Name, Discount: discount})
	}
}
