package locations

import (
	"errors"
	"strings"

	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LocationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type CreateLocationRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Phone   *string `json:"phone"`
}

type UpdateLocationRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

func toResponse(l models.BusinessLocation) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		City:      l.City,
		Phone:     l.Phone,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func nameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var n int64
	err := db.Model(&models.BusinessLocation{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID).
		Count(&n).Error
	return n > 0, err
}

func load(db *gorm.DB, c *fiber.Ctx) (*models.BusinessLocation, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	var loc models.BusinessLocation
	if err := db.First(&loc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "location not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load location")
	}
	return &loc, nil
}

func CreateLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location name is required")
		}
		taken, err := nameTaken(db, body.Name, 0)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create location")
		}
		if taken {
			return fiber.NewError(fiber.StatusConflict, "a location with this name already exists")
		}

		loc := models.BusinessLocation{
			Name:     body.Name,
			Address:  body.Address,
			City:     strings.TrimSpace(body.City),
			IsActive: true,
		}
		if body.Phone != nil {
			loc.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := db.Create(&loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create location")
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(loc))
	}
}

// GET /api/locations?active=true
func ListLocationsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.Order("name")
		if c.QueryBool("active") {
			q = q.Where("is_active = ?", true)
		}
		var locs []models.BusinessLocation
		if err := q.Find(&locs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list locations")
		}

		res := make([]LocationResponse, 0, len(locs))
		for _, l := range locs {
			res = append(res, toResponse(l))
		}
		return c.JSON(res)
	}
}

func GetLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := load(db, c)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*loc))
	}
}

func UpdateLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := load(db, c)
		if err != nil {
			return err
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "location name is required")
			}
			taken, err := nameTaken(db, name, loc.ID)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "could not update location")
			}
			if taken {
				return fiber.NewError(fiber.StatusConflict, "a location with this name already exists")
			}
			loc.Name = name
		}
		if body.Address != nil {
			loc.Address = *body.Address
		}
		if body.City != nil {
			loc.City = strings.TrimSpace(*body.City)
		}
		if body.Phone != nil {
			loc.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.IsActive != nil {
			loc.IsActive = *body.IsActive
		}

		if err := db.Save(loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update location")
		}
		return c.JSON(toResponse(*loc))
	}
}

// DELETE /api/locations/:id. Locations with recorded sales keep their history
// and cannot be removed; deactivate them instead.
func DeleteLocationHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc, err := load(db, c)
		if err != nil {
			return err
		}

		var sales int64
		if err := db.Model(&models.Sale{}).Where("location_id = ?", loc.ID).Count(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not check location sales")
		}
		if sales > 0 {
			return fiber.NewError(fiber.StatusConflict, "location has sales and cannot be deleted, deactivate it instead")
		}

		if err := db.Delete(loc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not delete location")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
