package purchasing

import (
	"errors"
	"time"

	"gastro-backend/internal/auth"
	"gastro-backend/internal/inventory"
	"gastro-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateOrderRequest struct {
	SupplierID           uint        `json:"supplier_id"`
	LocationID           uint        `json:"location_id"`
	ExpectedDeliveryDate *time.Time  `json:"expected_delivery_date"`
	Notes                string      `json:"notes"`
	Items                []ItemInput `json:"items"`
}

type ReceiveRequest struct {
	Items []struct {
		ID               uint    `json:"id"`
		ReceivedQuantity float64 `json:"received_quantity"`
	} `json:"items"`
}

func orderID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func currentUser(c *fiber.Ctx) *uint {
	if id, ok := auth.CurrentUserID(c); ok {
		return &id
	}
	return nil
}

func storeError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, inventory.ErrItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidItem), errors.Is(err, ErrOverReceived):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}

// GET /api/purchase-orders?status=&supplier_id=&location_id=
func ListOrdersHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{Status: models.PurchaseOrderStatus(c.Query("status"))}
		if v := c.QueryInt("supplier_id"); v > 0 {
			id := uint(v)
			f.SupplierID = &id
		}
		if v := c.QueryInt("location_id"); v > 0 {
			id := uint(v)
			f.LocationID = &id
		}
		orders, err := store.List(f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not list purchase orders")
		}
		return c.JSON(orders)
	}
}

func GetOrderHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := orderID(c)
		if err != nil {
			return err
		}
		order, err := store.Get(id)
		if err != nil {
			return storeError(err, "could not load purchase order")
		}
		return c.JSON(order)
	}
}

func CreateOrderHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.SupplierID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id is required")
		}
		if body.LocationID == 0 {
			if loc := auth.CurrentLocationID(c); loc != nil {
				body.LocationID = *loc
			} else {
				return fiber.NewError(fiber.StatusBadRequest, "location_id is required")
			}
		}

		items, total, err := BuildItems(body.Items)
		if err != nil {
			return storeError(err, "could not create purchase order")
		}
		order := models.PurchaseOrder{
			OrderNumber:          NewOrderNumber(time.Now()),
			SupplierID:           body.SupplierID,
			LocationID:           body.LocationID,
			Status:               models.POPending,
			TotalAmount:          total,
			ExpectedDeliveryDate: body.ExpectedDeliveryDate,
			Notes:                body.Notes,
			CreatedBy:            currentUser(c),
			Items:                items,
		}
		if err := store.Create(&order); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create purchase order")
		}
		return c.Status(fiber.StatusCreated).JSON(order)
	}
}

func transitionHandler(store *Store, to models.PurchaseOrderStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := orderID(c)
		if err != nil {
			return err
		}
		if err := store.SetStatus(id, to, currentUser(c)); err != nil {
			return storeError(err, "could not update purchase order")
		}
		order, err := store.Get(id)
		if err != nil {
			return storeError(err, "could not load purchase order")
		}
		return c.JSON(order)
	}
}

// POST /api/purchase-orders/:id/approve
func ApproveOrderHandler(store *Store) fiber.Handler {
	return transitionHandler(store, models.POApproved)
}

// POST /api/purchase-orders/:id/cancel
func CancelOrderHandler(store *Store) fiber.Handler {
	return transitionHandler(store, models.POCancelled)
}

// POST /api/purchase-orders/:id/receive. The body is optional; omitted lines
// are received in full.
func ReceiveOrderHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := orderID(c)
		if err != nil {
			return err
		}
		var body ReceiveRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}
		received := make(map[uint]float64, len(body.Items))
		for _, it := range body.Items {
			received[it.ID] = it.ReceivedQuantity
		}

		if err := store.Receive(id, received, currentUser(c)); err != nil {
			return storeError(err, "could not receive purchase order")
		}
		order, err := store.Get(id)
		if err != nil {
			return storeError(err, "could not load purchase order")
		}
		return c.JSON(order)
	}
}
