package sales

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/config"
	"gastro-backend/internal/events"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
	"gastro-backend/internal/recipes"

	"github.com/google/uuid"
)

var (
	ErrClosed            = errors.New("the restaurant is closed")
	ErrEmptySale         = errors.New("a sale needs at least one item")
	ErrInvalidItem       = errors.New("items need a name and a positive quantity")
	ErrUnknownRecipe     = errors.New("item references an unknown recipe")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrTotalsMismatch    = errors.New("totals do not match")
	ErrLocationRequired  = errors.New("location_id is required")
	ErrInvalidSaleType   = errors.New("sale_type must be LOCAL, DELIVERY or TAKEAWAY")
	ErrInvalidPayment    = errors.New("payment_method must be CASH, QR or CARD")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrAlreadyCancelled  = errors.New("sale is already cancelled")
)

// StockError lists the ingredients a sale would run short of.
type StockError struct {
	Missing []recipes.Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (needs %.3f%s, has %.3f%s)", m.Name, m.Required, m.Unit, m.Available, m.Unit))
	}
	return ErrInsufficientStock.Error() + ": " + strings.Join(parts, ", ")
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

type ItemInput struct {
	RecipeID  *uint    `json:"recipe_id"`
	ItemName  string   `json:"item_name"`
	Category  string   `json:"category"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

type SaleRequest struct {
	LocationID      uint                 `json:"location_id"`
	TableNumber     string               `json:"table_number"`
	WaiterID        *uint                `json:"waiter_id"`
	SaleType        models.SaleType      `json:"sale_type"`
	DeliveryService string               `json:"delivery_service"`
	CustomerName    string               `json:"customer_name"`
	CustomerPhone   string               `json:"customer_phone"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	Notes           string               `json:"notes"`
	Items           []ItemInput          `json:"items"`

	PromotionID    *uint   `json:"promotion_id"`
	DiscountAmount float64 `json:"discount_amount"` // manual discount, ignored when a promotion is set
	DiscountReason string  `json:"discount_reason"`

	// Totals the client computed. Checked against the server's when present.
	Subtotal *float64 `json:"subtotal"`
	Tax      *float64 `json:"tax"`
	Total    *float64 `json:"total"`
}

type Quote struct {
	Lines         []pricing.CartLine `json:"lines"`
	Totals        pricing.SaleTotals `json:"totals"`
	PromotionID   *uint              `json:"promotion_id,omitempty"`
	PromotionName string             `json:"promotion_name,omitempty"`
}

type DayStats struct {
	TotalSales    float64 `json:"total_sales"`
	Count         int64   `json:"count"`
	DishesSold    int64   `json:"dishes_sold"`
	AverageTicket float64 `json:"average_ticket"`
}

type Filter struct {
	From       *time.Time
	To         *time.Time
	LocationID *uint
	Status     models.SaleStatus
}

type Repository interface {
	List(f Filter) ([]models.Sale, error)
	Get(id uint) (*models.Sale, error)
	// Create persists sale and consumes the given inventory quantities in one transaction.
	Create(sale *models.Sale, consume map[uint]float64, actor audit.Actor) error
	// Void cancels a completed sale and returns the stock its SALE movements took.
	Void(id uint, actor audit.Actor) (*models.Sale, error)
	Stats(from, to time.Time, locationID *uint) (DayStats, error)
}

type RecipeSource interface {
	ByIDs(ids []uint) (map[uint]models.Recipe, error)
}

type StockSource interface {
	ItemsByIDs(ids []uint) (map[uint]models.InventoryItem, error)
}

type PromotionResolver interface {
	Resolve(id uint, locationID *uint, subtotal float64, lines []pricing.CartLine) (*models.Promotion, float64, error)
}

type Deps struct {
	Repo       Repository
	Recipes    RecipeSource
	Stock      StockSource
	Promotions PromotionResolver
	Publisher  events.Publisher
	QR         QRGenerator
}

type Service struct {
	cfg  *config.Config
	deps Deps
	now  func() time.Time
}

func NewService(cfg *config.Config, deps Deps) *Service {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	return &Service{cfg: cfg, deps: deps, now: time.Now}
}

// NewSaleNumber returns V-YYYYMMDD-XXXXXXXX.
func NewSaleNumber(t time.Time) string {
	return "V-" + t.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
}

type priced struct {
	quote   Quote
	recipes map[uint]models.Recipe
}

// lineKey identifies a cart line by what is sold and the price it is sold
// at, so the same dish at two prices stays on two lines.
func lineKey(in ItemInput, unitPrice float64) string {
	if in.RecipeID != nil {
		return fmt.Sprintf("recipe:%d@%.2f", *in.RecipeID, unitPrice)
	}
	return fmt.Sprintf("item:%s@%.2f", strings.ToLower(strings.TrimSpace(in.ItemName)), unitPrice)
}

// price builds the cart for req, resolves its discount and computes totals.
func (s *Service) price(req SaleRequest) (*priced, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}

	var ids []uint
	for _, in := range req.Items {
		if in.RecipeID != nil {
			ids = append(ids, *in.RecipeID)
		}
	}
	known, err := s.deps.Recipes.ByIDs(ids)
	if err != nil {
		return nil, err
	}

	cart := pricing.NewCart()
	qty := map[string]int{}
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			return nil, ErrInvalidItem
		}
		item := pricing.CartItem{RecipeID: in.RecipeID, Name: strings.TrimSpace(in.ItemName), Category: in.Category}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if in.RecipeID != nil {
			r, ok := known[*in.RecipeID]
			if !ok {
				return nil, fmt.Errorf("recipe %d: %w", *in.RecipeID, ErrUnknownRecipe)
			}
			if item.Name == "" {
				item.Name = r.Name
			}
			if item.Category == "" {
				item.Category = r.Category
			}
			if in.UnitPrice == nil {
				item.UnitPrice = r.Price
			}
		}
		if item.Name == "" {
			return nil, ErrInvalidItem
		}
		item.Key = lineKey(in, item.UnitPrice)
		if err := cart.AddItem(item); err != nil {
			return nil, fmt.Errorf("%s: %w", item.Name, err)
		}
		qty[item.Key] += in.Quantity
		if err := cart.UpdateQuantity(item.Key, qty[item.Key]); err != nil {
			return nil, err
		}
	}

	lines := cart.Lines()
	q := Quote{Lines: lines}
	var discount float64
	switch {
	case req.PromotionID != nil:
		var loc *uint
		if req.LocationID != 0 {
			loc = &req.LocationID
		}
		promo, d, err := s.deps.Promotions.Resolve(*req.PromotionID, loc, pricing.Subtotal(lines), lines)
		if err != nil {
			return nil, err
		}
		discount = d
		q.PromotionID = &promo.ID
		q.PromotionName = promo.Name
	case req.DiscountAmount > 0:
		discount = req.DiscountAmount
	}

	q.Totals = pricing.ComputeTotals(lines, discount, s.cfg.TaxRate).Rounded()
	return &priced{quote: q, recipes: known}, nil
}

func (s *Service) Quote(req SaleRequest) (Quote, error) {
	p, err := s.price(req)
	if err != nil {
		return Quote{}, err
	}
	return p.quote, nil
}

func checkClientTotals(req SaleRequest, server pricing.SaleTotals) error {
	check := func(name string, client *float64, want float64) error {
		if client != nil && !pricing.WithinTolerance(*client, want) {
			return fmt.Errorf("%w: %s expected %.2f, got %.2f", ErrTotalsMismatch, name, want, *client)
		}
		return nil
	}
	if err := check("subtotal", req.Subtotal, server.Subtotal); err != nil {
		return err
	}
	if err := check("tax", req.Tax, server.Tax); err != nil {
		return err
	}
	return check("total", req.Total, server.Total)
}

// requirements sums the inventory needed by every recipe line.
func requirements(lines []pricing.CartLine, known map[uint]models.Recipe) map[uint]float64 {
	total := map[uint]float64{}
	for _, l := range lines {
		if l.RecipeID == nil {
			continue
		}
		r, ok := known[*l.RecipeID]
		if !ok {
			continue
		}
		for id, q := range recipes.Requirements(r, l.Quantity) {
			total[id] += q
		}
	}
	return total
}

func keys(m map[uint]float64) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

func validateKinds(req *SaleRequest) error {
	if req.SaleType == "" {
		req.SaleType = models.SaleLocal
	}
	switch req.SaleType {
	case models.SaleLocal, models.SaleDelivery, models.SaleTakeaway:
	default:
		return ErrInvalidSaleType
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}
	switch req.PaymentMethod {
	case models.PaymentCash, models.PaymentQR, models.PaymentCard:
	default:
		return ErrInvalidPayment
	}
	return nil
}

// Create checks opening hours, stock and totals, then records the sale and
// consumes its ingredients.
func (s *Service) Create(ctx context.Context, req SaleRequest, actor audit.Actor) (*models.Sale, error) {
	now := s.now()
	if !s.cfg.OpenAt(now) {
		return nil, fmt.Errorf("%w: opening hours are %02d:00-%02d:00", ErrClosed, s.cfg.BusinessOpenHour, s.cfg.BusinessCloseHour)
	}
	if err := validateKinds(&req); err != nil {
		return nil, err
	}
	if req.LocationID == 0 && actor.LocationID != nil {
		req.LocationID = *actor.LocationID
	}
	if req.LocationID == 0 {
		return nil, ErrLocationRequired
	}

	p, err := s.price(req)
	if err != nil {
		return nil, err
	}
	totals := p.quote.Totals
	if err := checkClientTotals(req, totals); err != nil {
		return nil, err
	}

	need := requirements(p.quote.Lines, p.recipes)
	if len(need) > 0 {
		stock, err := s.deps.Stock.ItemsByIDs(keys(need))
		if err != nil {
			return nil, err
		}
		if missing := recipes.CheckAvailability(need, stock); len(missing) > 0 {
			return nil, &StockError{Missing: missing}
		}
	}

	sale := &models.Sale{
		SaleNumber:      NewSaleNumber(now),
		LocationID:      req.LocationID,
		TableNumber:     req.TableNumber,
		WaiterID:        req.WaiterID,
		SaleType:        req.SaleType,
		DeliveryService: req.DeliveryService,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.Discount,
		Tax:             totals.Tax,
		Total:           totals.Total,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Status:          models.SaleCompleted,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		sale.UserID = &uid
	}
	for _, l := range p.quote.Lines {
		sale.Items = append(sale.Items, models.SaleItem{
			RecipeID:  l.RecipeID,
			ItemName:  l.ItemName,
			Category:  l.Category,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     pricing.RoundMoney(l.LineTotal()),
		})
	}
	if totals.Discount > 0 {
		d := models.SaleDiscount{DiscountType: "manual", DiscountAmount: totals.Discount, Reason: req.DiscountReason}
		if p.quote.PromotionID != nil {
			d.DiscountType = "promotion"
			d.PromotionID = p.quote.PromotionID
			d.Reason = p.quote.PromotionName
		}
		sale.Discounts = append(sale.Discounts, d)
	}

	if err := s.deps.Repo.Create(sale, need, actor); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeSaleCompleted, *sale, sale.CreatedAt)
	return sale, nil
}

func (s *Service) publish(ctx context.Context, kind string, sale models.Sale, at time.Time) {
	items := 0
	for _, it := range sale.Items {
		items += it.Quantity
	}
	if at.IsZero() {
		at = s.now()
	}
	ev := events.SaleEvent{
		Type:          kind,
		SaleID:        sale.ID,
		SaleNumber:    sale.SaleNumber,
		LocationID:    sale.LocationID,
		UserID:        sale.UserID,
		Total:         sale.Total,
		Items:         items,
		PaymentMethod: string(sale.PaymentMethod),
		OccurredAt:    at,
	}
	if err := s.deps.Publisher.PublishSale(ctx, ev); err != nil {
		log.Printf("[WARN] publish %s for sale %s: %v", kind, sale.SaleNumber, err)
	}
}

func (s *Service) List(f Filter) ([]models.Sale, error) {
	return s.deps.Repo.List(f)
}

func (s *Service) Get(id uint) (*models.Sale, error) {
	return s.deps.Repo.Get(id)
}

// Void cancels a sale and returns the stock it consumed. The voided event
// carries the original sale time so daily counters are decremented on the
// right day.
func (s *Service) Void(ctx context.Context, id uint, actor audit.Actor) (*models.Sale, error) {
	sale, err := s.deps.Repo.Get(id)
	if err != nil {
		return nil, err
	}
	if sale.Status == models.SaleCancelled {
		return nil, ErrAlreadyCancelled
	}

	voided, err := s.deps.Repo.Void(id, actor)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TypeSaleVoided, *voided, voided.CreatedAt)
	return voided, nil
}

func (s *Service) TodayStats(locationID *uint) (DayStats, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats, err := s.deps.Repo.Stats(from, from.AddDate(0, 0, 1), locationID)
	if err != nil {
		return DayStats{}, err
	}
	if stats.Count > 0 {
		stats.AverageTicket = pricing.RoundMoney(stats.TotalSales / float64(stats.Count))
	}
	stats.TotalSales = pricing.RoundMoney(stats.TotalSales)
	return stats, nil
}

func (s *Service) QRCode(id uint) ([]byte, error) {
	sale, err := s.deps.Repo.Get(id)
	if err != nil {
		return nil, err
	}
	return s.deps.QR.Generate(*sale)
}
