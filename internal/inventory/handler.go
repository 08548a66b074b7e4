package inventory

import (
	"errors"
	"strings"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/auth"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateItemRequest struct {
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	MinStock    float64    `json:"min_stock"`
	MaxStock    *float64   `json:"max_stock"`
	CostPerUnit float64    `json:"cost_per_unit"`
	SupplierID  *uint      `json:"supplier_id"`
	LocationID  *uint      `json:"location_id"`
	Barcode     *string    `json:"barcode"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

type UpdateItemRequest struct {
	Name        *string    `json:"name"`
	Category    *string    `json:"category"`
	Quantity    *float64   `json:"quantity"`
	Unit        *string    `json:"unit"`
	MinStock    *float64   `json:"min_stock"`
	MaxStock    *float64   `json:"max_stock"`
	CostPerUnit *float64   `json:"cost_per_unit"`
	SupplierID  *uint      `json:"supplier_id"`
	LocationID  *uint      `json:"location_id"`
	Barcode     *string    `json:"barcode"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

type ItemResponse struct {
	models.InventoryItem
	Status models.StockStatus `json:"status"`
}

type CreateMovementRequest struct {
	InventoryItemID uint                `json:"inventory_item_id"`
	LocationID      *uint               `json:"location_id"`
	MovementType    models.MovementType `json:"movement_type"`
	Quantity        float64             `json:"quantity"`
	Unit            string              `json:"unit"`
	CostPerUnit     *float64            `json:"cost_per_unit"`
	ReferenceType   string              `json:"reference_type"`
	ReferenceID     *uint               `json:"reference_id"`
	Notes           string              `json:"notes"`
}

func toItemResponse(item models.InventoryItem) ItemResponse {
	return ItemResponse{InventoryItem: item, Status: item.Status()}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func validateItem(item *models.InventoryItem) error {
	if item.Name == "" || item.Category == "" || item.Unit == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, category and unit are required")
	}
	if item.Quantity < 0 || item.MinStock < 0 || item.CostPerUnit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity, min_stock and cost_per_unit cannot be negative")
	}
	if item.MaxStock != nil && *item.MaxStock < item.MinStock {
		return fiber.NewError(fiber.StatusBadRequest, "max_stock cannot be below min_stock")
	}
	return nil
}

func itemID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// GET /api/inventory?category=&location_id=&search=&status=low
func ListItemsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ItemFilter{
			Category: c.Query("category"),
			Search:   strings.TrimSpace(c.Query("search")),
			Status:   models.StockStatus(c.Query("status")),
		}
		if v := c.QueryInt("location_id"); v > 0 {
			loc := uint(v)
			f.LocationID = &loc
		}

		items, err := store.ListItems(f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list inventory")
		}

		res := make([]ItemResponse, 0, len(items))
		for _, it := range items {
			res = append(res, toItemResponse(it))
		}
		return c.JSON(res)
	}
}

func GetItemHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemID(c)
		if err != nil {
			return err
		}
		item, err := store.GetItem(id)
		if errors.Is(err, ErrItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load item")
		}
		return c.JSON(toItemResponse(*item))
	}
}

func CreateItemHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		item := models.InventoryItem{
			Name:        strings.TrimSpace(body.Name),
			Category:    strings.TrimSpace(body.Category),
			Quantity:    body.Quantity,
			Unit:        strings.TrimSpace(body.Unit),
			MinStock:    body.MinStock,
			MaxStock:    body.MaxStock,
			CostPerUnit: body.CostPerUnit,
			SupplierID:  body.SupplierID,
			LocationID:  body.LocationID,
			Barcode:     trimOptional(body.Barcode),
			ExpiryDate:  body.ExpiryDate,
		}
		if err := validateItem(&item); err != nil {
			return err
		}

		if err := store.CreateItem(&item, audit.ActorFrom(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create item")
		}
		return c.Status(fiber.StatusCreated).JSON(toItemResponse(item))
	}
}

func UpdateItemHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemID(c)
		if err != nil {
			return err
		}
		item, err := store.GetItem(id)
		if errors.Is(err, ErrItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load item")
		}
		before := *item

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Name != nil {
			item.Name = strings.TrimSpace(*body.Name)
		}
		if body.Category != nil {
			item.Category = strings.TrimSpace(*body.Category)
		}
		if body.Quantity != nil {
			item.Quantity = *body.Quantity
		}
		if body.Unit != nil {
			item.Unit = strings.TrimSpace(*body.Unit)
		}
		if body.MinStock != nil {
			item.MinStock = *body.MinStock
		}
		if body.MaxStock != nil {
			item.MaxStock = body.MaxStock
		}
		if body.CostPerUnit != nil {
			item.CostPerUnit = *body.CostPerUnit
		}
		if body.SupplierID != nil {
			item.SupplierID = body.SupplierID
		}
		if body.LocationID != nil {
			item.LocationID = body.LocationID
		}
		if body.Barcode != nil {
			item.Barcode = trimOptional(body.Barcode)
		}
		if body.ExpiryDate != nil {
			item.ExpiryDate = body.ExpiryDate
		}
		if err := validateItem(item); err != nil {
			return err
		}

		if err := store.UpdateItem(item, before, audit.ActorFrom(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not update item")
		}
		return c.JSON(toItemResponse(*item))
	}
}

func DeleteItemHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemID(c)
		if err != nil {
			return err
		}
		err = store.DeleteItem(id, audit.ActorFrom(c))
		if errors.Is(err, ErrItemNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusConflict, "item is still referenced and cannot be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/inventory/import (multipart field "file", .xlsx)
func ImportItemsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file is required")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open file")
		}
		defer file.Close()

		rows, err := ReadImportFile(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		parsed, problems := ParseImportRows(rows)
		if len(parsed) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "no importable rows found")
		}

		locationID := auth.CurrentLocationID(c)
		if v := c.QueryInt("location_id"); v > 0 {
			loc := uint(v)
			locationID = &loc
		}

		res, err := store.ImportRows(parsed, locationID, audit.ActorFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "import failed: "+err.Error())
		}
		res.Problems = append(res.Problems, problems...)
		return c.JSON(res)
	}
}

// GET /api/inventory-movements?item_id=&type=&location_id=&start_date=&end_date=
func ListMovementsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := MovementFilter{
			Type:  models.MovementType(strings.ToUpper(c.Query("type"))),
			Limit: c.QueryInt("limit", 500),
		}
		if id, err := c.ParamsInt("id"); err == nil && id > 0 {
			f.ItemID = uint(id)
		} else if v := c.QueryInt("item_id"); v > 0 {
			f.ItemID = uint(v)
		}
		if v := c.QueryInt("location_id"); v > 0 {
			loc := uint(v)
			f.LocationID = &loc
		}
		from, to, err := parseDateRange(c.Query("start_date"), c.Query("end_date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		f.From, f.To = from, to

		movements, err := store.ListMovements(f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list movements")
		}
		return c.JSON(movements)
	}
}

func CreateMovementHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.InventoryItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "inventory_item_id is required")
		}

		mv := models.InventoryMovement{
			InventoryItemID: body.InventoryItemID,
			LocationID:      body.LocationID,
			MovementType:    models.MovementType(strings.ToUpper(string(body.MovementType))),
			Quantity:        body.Quantity,
			Unit:            body.Unit,
			ReferenceType:   body.ReferenceType,
			ReferenceID:     body.ReferenceID,
			Notes:           body.Notes,
		}
		if body.CostPerUnit != nil {
			mv.CostPerUnit = *body.CostPerUnit
		}
		if uid, ok := auth.CurrentUserID(c); ok {
			mv.UserID = &uid
		}

		item, err := store.RecordMovement(&mv)
		switch {
		case errors.Is(err, ErrItemNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidMovementType), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInsufficientStock):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "could not record movement")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"movement": mv,
			"item":     toItemResponse(*item),
		})
	}
}

func parseDateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := time.ParseInLocation("2006-01-02", start, time.Local)
		if err != nil {
			return nil, nil, errors.New("start_date must be YYYY-MM-DD")
		}
		from = &t
	}
	if end != "" {
		t, err := time.ParseInLocation("2006-01-02", end, time.Local)
		if err != nil {
			return nil, nil, errors.New("end_date must be YYYY-MM-DD")
		}
		// end date is inclusive
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	return from, to, nil
}

// GET /api/alerts/stock-critical
func CriticalStockHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := store.ListItems(ItemFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load inventory")
		}
		return c.JSON(CriticalStockAlerts(items))
	}
}

// GET /api/alerts/stock-low?threshold=1.2
func LowStockHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := c.QueryFloat("threshold", DefaultLowStockThreshold)
		items, err := store.ListItems(ItemFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load inventory")
		}
		return c.JSON(LowStockAlerts(items, threshold))
	}
}

// GET /api/alerts/recipes-low-margin?min_margin=30
func LowMarginHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		minMargin := c.QueryFloat("min_margin", DefaultMinMargin)
		recipes, err := store.RecipesBelowMargin(minMargin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recipes")
		}
		return c.JSON(LowMarginAlerts(recipes, minMargin))
	}
}

// GET /api/alerts/all
func AllAlertsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := store.ListItems(ItemFilter{})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load inventory")
		}
		recipes, err := store.RecipesBelowMargin(DefaultMinMargin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load recipes")
		}
		return c.JSON(BuildAllAlerts(items, recipes))
	}
}
