package inventory

import (
	"errors"
	"math"

	"gastro-backend/internal/models"
)

var (
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrInvalidQuantity     = errors.New("quantity must be non-zero")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrItemNotFound        = errors.New("inventory item not found")
)

// NextQuantity returns the stock level after a movement. IN/RETURN add the
// absolute quantity, OUT/WASTE/SALE remove it and ADJUSTMENT applies the
// signed quantity as is. Stock never goes below zero.
func NextQuantity(current float64, t models.MovementType, qty float64) (float64, error) {
	if !t.Valid() {
		return current, ErrInvalidMovementType
	}
	if qty == 0 {
		return current, ErrInvalidQuantity
	}

	delta := qty
	if t != models.MovementAdjustment {
		delta = t.Sign() * math.Abs(qty)
	}

	next := current + delta
	if next < 0 {
		return current, ErrInsufficientStock
	}
	return next, nil
}
