package reports

import (
	"fmt"

	"gastro-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func queryDays(c *fiber.Ctx) (int, error) {
	days := c.QueryInt("days", 30)
	if days < 1 || days > 366 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 366")
	}
	return days, nil
}

// locationScope narrows reports to ?location_id when given.
func locationScope(c *fiber.Ctx) *uint {
	if v := c.QueryInt("location_id"); v > 0 {
		loc := uint(v)
		return &loc
	}
	return nil
}

// GET /api/reports/summary?days=30
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := queryDays(c)
		if err != nil {
			return err
		}
		summary, err := svc.Summary(days, locationScope(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build summary")
		}
		return c.JSON(summary)
	}
}

// GET /api/reports/monthly?months=6
func MonthlyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		months := c.QueryInt("months", 6)
		if months < 1 || months > 24 {
			return fiber.NewError(fiber.StatusBadRequest, "months must be between 1 and 24")
		}
		rows, err := svc.Monthly(months, locationScope(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build monthly report")
		}
		return c.JSON(rows)
	}
}

func CategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := queryDays(c)
		if err != nil {
			return err
		}
		rows, err := svc.Categories(days, locationScope(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build category report")
		}
		return c.JSON(rows)
	}
}

func MarginsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Margins()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build margin report")
		}
		return c.JSON(rows)
	}
}

func PaymentMethodsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := queryDays(c)
		if err != nil {
			return err
		}
		rows, err := svc.PaymentMethods(days, locationScope(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build payment report")
		}
		return c.JSON(rows)
	}
}

// GET /api/reports/export?format=json|csv|xlsx&days=30
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := c.Query("format", "json")
		if format != "json" && format != "csv" && format != "xlsx" {
			return fiber.NewError(fiber.StatusBadRequest, ErrUnknownFormat.Error())
		}
		days, err := queryDays(c)
		if err != nil {
			return err
		}
		report, err := svc.Full(days, locationScope(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not build report")
		}
		if format == "json" {
			return c.JSON(report)
		}

		var (
			body        []byte
			contentType string
		)
		if format == "csv" {
			body, err = report.CSV()
			contentType = "text/csv"
		} else {
			body, err = report.XLSX()
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not export report")
		}

		name := fmt.Sprintf("report_%s.%s", report.ExportedAt.Format("20060102_150405"), format)
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Send(body)
	}
}

// GET /api/reports/live?location_id= reads today's counters. Without a
// location it falls back to the caller's own, then to all locations.
func LiveHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var loc uint
		if scope := locationScope(c); scope != nil {
			loc = *scope
		} else if own := auth.CurrentLocationID(c); own != nil {
			loc = *own
		}
		stats, err := svc.Live(c.Context(), loc)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not read live counters")
		}
		return c.JSON(stats)
	}
}
