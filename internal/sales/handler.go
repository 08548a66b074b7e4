package sales

import (
	"errors"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
	"gastro-backend/internal/promotions"

	"github.com/gofiber/fiber/v2"
)

func saleID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// locationScope reads ?location_id and falls back to the caller's own location.
func locationScope(c *fiber.Ctx) *uint {
	if v := c.QueryInt("location_id"); v > 0 {
		loc := uint(v)
		return &loc
	}
	return auth.CurrentLocationID(c)
}

func parseDay(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, field+" must be YYYY-MM-DD")
	}
	return &t, nil
}

func serviceError(err error, fallback string) error {
	var stockErr *StockError
	switch {
	case errors.As(err, &stockErr):
		return fiber.NewError(fiber.StatusConflict, stockErr.Error())
	case errors.Is(err, ErrInsufficientStock):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrSaleNotFound), errors.Is(err, promotions.ErrPromotionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyCancelled):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrClosed), errors.Is(err, ErrEmptySale), errors.Is(err, ErrInvalidItem),
		errors.Is(err, ErrUnknownRecipe), errors.Is(err, ErrTotalsMismatch), errors.Is(err, ErrLocationRequired),
		errors.Is(err, ErrInvalidSaleType), errors.Is(err, ErrInvalidPayment),
		errors.Is(err, promotions.ErrNotActive), errors.Is(err, pricing.ErrNegativePrice):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

// POST /api/sales/quote
func QuoteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.LocationID == 0 {
			if loc := auth.CurrentLocationID(c); loc != nil {
				body.LocationID = *loc
			}
		}
		q, err := svc.Quote(body)
		if err != nil {
			return serviceError(err, "could not price sale")
		}
		return c.JSON(q)
	}
}

func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		sale, err := svc.Create(c.Context(), body, audit.ActorFrom(c))
		if err != nil {
			return serviceError(err, "could not create sale")
		}
		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

// GET /api/sales?start_date=&end_date=&location_id=&status=
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := parseDay(c.Query("start_date"), "start_date")
		if err != nil {
			return err
		}
		to, err := parseDay(c.Query("end_date"), "end_date")
		if err != nil {
			return err
		}
		if to != nil {
			end := to.AddDate(0, 0, 1)
			to = &end
		}

		sales, err := svc.List(Filter{
			From:       from,
			To:         to,
			LocationID: locationScope(c),
			Status:     models.SaleStatus(c.Query("status")),
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list sales")
		}
		return c.JSON(sales)
	}
}

func GetSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := saleID(c)
		if err != nil {
			return err
		}
		sale, err := svc.Get(id)
		if err != nil {
			return serviceError(err, "could not load sale")
		}
		return c.JSON(sale)
	}
}

// DELETE /api/sales/:id voids the sale and restores stock.
func VoidSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := saleID(c)
		if err != nil {
			return err
		}
		sale, err := svc.Void(c.Context(), id, audit.ActorFrom(c))
		if err != nil {
			return serviceError(err, "could not void sale")
		}
		return c.JSON(fiber.Map{
			"message": "sale cancelled and stock restored",
			"sale":    sale,
		})
	}
}

func TodayStatsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.TodayStats(locationScope(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load today's stats")
		}
		return c.JSON(stats)
	}
}

// GET /api/sales/:id/qrcode returns a PNG.
func SaleQRCodeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := saleID(c)
		if err != nil {
			return err
		}
		png, err := svc.QRCode(id)
		if err != nil {
			return serviceError(err, "could not generate QR code")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}
}
