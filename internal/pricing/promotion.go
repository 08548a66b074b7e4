package pricing

import (
	"errors"
	"math"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountBuyXGetY    DiscountType = "buy_x_get_y"
)

type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeRecipes    Scope = "recipes"
	ScopeCategories Scope = "categories"
)

var (
	ErrUnknownDiscountType = errors.New("unknown discount type")
	ErrInvalidDiscount     = errors.New("discount value must be positive")
	ErrInvalidPercentage   = errors.New("percentage must be between 0 and 100")
	ErrInvalidBuyXGetY     = errors.New("buy and get quantities must be positive")
)

// PromotionRule is the part of a promotion that drives the discount math.
type PromotionRule struct {
	Type                 DiscountType
	Value                float64
	MinPurchase          *float64
	MaxDiscount          *float64
	BuyQuantity          int
	GetQuantity          int
	ApplicableTo         Scope
	ApplicableRecipeIDs  []uint
	ApplicableCategories []string
}

func (p PromotionRule) Validate() error {
	switch p.Type {
	case DiscountPercentage:
		if p.Value <= 0 || p.Value > 100 {
			return ErrInvalidPercentage
		}
	case DiscountFixedAmount:
		if p.Value <= 0 {
			return ErrInvalidDiscount
		}
	case DiscountBuyXGetY:
		if p.BuyQuantity <= 0 || p.GetQuantity <= 0 {
			return ErrInvalidBuyXGetY
		}
	default:
		return ErrUnknownDiscountType
	}
	return nil
}

// Eligible reports whether a cart line falls under the promotion scope.
func (p PromotionRule) Eligible(l CartLine) bool {
	switch p.ApplicableTo {
	case ScopeRecipes:
		if l.RecipeID == nil {
			return false
		}
		for _, id := range p.ApplicableRecipeIDs {
			if id == *l.RecipeID {
				return true
			}
		}
		return false
	case ScopeCategories:
		for _, c := range p.ApplicableCategories {
			if c == l.Category {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// ResolveDiscount turns a promotion into a discount for the given subtotal.
// Lines are optional for percentage and fixed promotions with an "all" scope;
// buy_x_get_y always needs them. The result is recomputed from scratch on every call.
func ResolveDiscount(p PromotionRule, subtotal float64, lines []CartLine) float64 {
	if p.MinPurchase != nil && subtotal < *p.MinPurchase {
		return 0
	}

	base := subtotal
	scoped := len(lines) > 0 && p.ApplicableTo != "" && p.ApplicableTo != ScopeAll
	if scoped {
		base = 0
		for _, l := range lines {
			if p.Eligible(l) {
				base += l.LineTotal()
			}
		}
	}

	var discount float64
	switch p.Type {
	case DiscountPercentage:
		discount = base * p.Value / 100
	case DiscountFixedAmount:
		if !scoped || base > 0 {
			discount = p.Value
		}
	case DiscountBuyXGetY:
		discount = buyXGetY(p, lines)
	}

	if p.MaxDiscount != nil && discount > *p.MaxDiscount {
		discount = *p.MaxDiscount
	}
	return discount
}

// buyXGetY gives away GetQuantity units for every BuyQuantity+GetQuantity
// units of an eligible line.
func buyXGetY(p PromotionRule, lines []CartLine) float64 {
	if p.BuyQuantity <= 0 || p.GetQuantity <= 0 {
		return 0
	}
	group := p.BuyQuantity + p.GetQuantity
	var discount float64
	for _, l := range lines {
		if !p.Eligible(l) || l.Quantity <= 0 {
			continue
		}
		free := int(math.Floor(float64(l.Quantity)/float64(group))) * p.GetQuantity
		discount += float64(free) * l.UnitPrice
	}
	return discount
}
