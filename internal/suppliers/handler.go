package suppliers

import (
	"errors"
	"strings"

	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SupplierRequest struct {
	Name         *string  `json:"name"`
	ContactName  *string  `json:"contact_name"`
	Phone        *string  `json:"phone"`
	Email        *string  `json:"email"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	Zone         *string  `json:"zone"`
	TaxID        *string  `json:"tax_id"`
	PaymentTerms *string  `json:"payment_terms"`
	Rating       *float64 `json:"rating"`
	IsActive     *bool    `json:"is_active"`
	Notes        *string  `json:"notes"`
}

func trimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// apply copies the set fields onto s and validates the result.
func (body SupplierRequest) apply(s *models.Supplier) error {
	trimmed(&s.Name, body.Name)
	trimmed(&s.ContactName, body.ContactName)
	trimmed(&s.Phone, body.Phone)
	trimmed(&s.Email, body.Email)
	trimmed(&s.Address, body.Address)
	trimmed(&s.City, body.City)
	trimmed(&s.Zone, body.Zone)
	trimmed(&s.TaxID, body.TaxID)
	trimmed(&s.PaymentTerms, body.PaymentTerms)
	trimmed(&s.Notes, body.Notes)
	if body.Rating != nil {
		s.Rating = body.Rating
	}
	if body.IsActive != nil {
		s.IsActive = *body.IsActive
	}

	if s.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if s.Rating != nil && (*s.Rating < 1 || *s.Rating > 5) {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "email is not valid")
	}
	s.Email = strings.ToLower(s.Email)
	return nil
}

func load(db *gorm.DB, c *fiber.Ctx) (*models.Supplier, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var s models.Supplier
	if err := db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load supplier")
	}
	return &s, nil
}

// GET /api/suppliers?search=&active=true
func ListSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Model(&models.Supplier{})
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ?", like, like)
		}
		if c.QueryBool("active") {
			q = q.Where("is_active = ?", true)
		}
		var suppliers []models.Supplier
		if err := q.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list suppliers")
		}
		return c.JSON(suppliers)
	}
}

func GetSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := load(db, c)
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

func CreateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		s := models.Supplier{IsActive: true}
		if err := body.apply(&s); err != nil {
			return err
		}
		if err := db.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create supplier")
		}
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

func UpdateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := load(db, c)
		if err != nil {
			return err
		}
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := body.apply(s); err != nil {
			return err
		}
		if err := db.Save(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update supplier")
		}
		return c.JSON(s)
	}
}

// DELETE /api/suppliers/:id. Suppliers still referenced by inventory items or
// purchase orders are deactivated instead of deleted.
func DeleteSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := load(db, c)
		if err != nil {
			return err
		}

		var refs int64
		if err := db.Model(&models.InventoryItem{}).Where("supplier_id = ?", s.ID).Count(&refs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check supplier usage")
		}
		if refs == 0 {
			if err := db.Model(&models.PurchaseOrder{}).Where("supplier_id = ?", s.ID).Count(&refs).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not check supplier usage")
			}
		}

		if refs > 0 {
			if err := db.Model(s).Update("is_active", false).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not deactivate supplier")
			}
			return c.JSON(fiber.Map{"message": "supplier is in use and was deactivated"})
		}

		if err := db.Delete(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete supplier")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
