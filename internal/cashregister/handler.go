package cashregister

import (
	"errors"

	"gastro-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type OpenRequest struct {
	LocationID    uint    `json:"location_id"`
	OpeningAmount float64 `json:"opening_amount"`
	Comments      string  `json:"comments"`
}

type CloseRequest struct {
	CountedAmount float64 `json:"counted_amount"`
	Comments      string  `json:"comments"`
}

func storeError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyOpen), errors.Is(err, ErrSessionClosed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNegativeAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

func location(c *fiber.Ctx, requested uint) (uint, error) {
	if requested > 0 {
		return requested, nil
	}
	if loc := auth.CurrentLocationID(c); loc != nil {
		return *loc, nil
	}
	return 0, fiber.NewError(fiber.StatusBadRequest, "location_id is required")
}

// GET /api/cash-register/status?location_id=
func StatusHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "user not available")
		}
		loc, err := location(c, uint(max(c.QueryInt("location_id"), 0)))
		if err != nil {
			return err
		}
		session, err := store.Current(userID, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load cash session")
		}
		return c.JSON(fiber.Map{
			"is_open": session != nil,
			"session": session,
		})
	}
}

func OpenHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := auth.CurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "user not available")
		}
		var body OpenRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		loc, err := location(c, body.LocationID)
		if err != nil {
			return err
		}
		session, err := store.Open(userID, loc, body.OpeningAmount, body.Comments)
		if err != nil {
			return storeError(err, "could not open cash session")
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// POST /api/cash-register/:id/close
func CloseHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid id")
		}
		var body CloseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		session, err := store.Close(uint(id), body.CountedAmount, body.Comments)
		if err != nil {
			return storeError(err, "could not close cash session")
		}
		return c.JSON(session)
	}
}
