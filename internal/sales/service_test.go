package sales_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/config"
	"gastro-backend/internal/events"
	"gastro-backend/internal/mocks"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
	"gastro-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func uptr(v uint) *uint       { return &v }
func fptr(v float64) *float64 { return &v }

var openAllDay = &config.Config{TaxRate: 0.13, BusinessOpenHour: 0, BusinessCloseHour: 24}

// silpancho needs 0.25 kg of beef (item 5) per serving.
var silpancho = models.Recipe{
	ID:       1,
	Name:     "Silpancho",
	Category: "Platos",
	Price:    25,
	Servings: 1,
	Ingredients: []models.RecipeIngredient{
		{InventoryItemID: uptr(5), Name: "Carne", Quantity: 0.25, Unit: "kg"},
		{Name: "Sal", Quantity: 0.01, Unit: "kg"},
	},
}

type fixture struct {
	repo      *mocks.SaleRepository
	recipes   *mocks.RecipeSource
	stock     *mocks.StockSource
	promos    *mocks.PromotionResolver
	publisher *mocks.Publisher
	qr        *mocks.QRGenerator
	svc       *sales.Service
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	f := &fixture{
		repo:      mocks.NewSaleRepository(t),
		recipes:   mocks.NewRecipeSource(t),
		stock:     mocks.NewStockSource(t),
		promos:    mocks.NewPromotionResolver(t),
		publisher: mocks.NewPublisher(t),
		qr:        mocks.NewQRGenerator(t),
	}
	f.svc = sales.NewService(cfg, sales.Deps{
		Repo:       f.repo,
		Recipes:    f.recipes,
		Stock:      f.stock,
		Promotions: f.promos,
		Publisher:  f.publisher,
		QR:         f.qr,
	})
	return f
}

func basicRequest() sales.SaleRequest {
	return sales.SaleRequest{
		LocationID: 3,
		Items: []sales.ItemInput{
			{RecipeID: uptr(1), Quantity: 1},
			{RecipeID: uptr(1), Quantity: 1},
			{ItemName: "Coca Cola", Category: "Bebidas", Quantity: 1, UnitPrice: fptr(10)},
		},
	}
}

func TestService_QuoteMergesLinesAndAddsTax(t *testing.T) {
	f := newFixture(t, openAllDay)
	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)

	q, err := f.svc.Quote(basicRequest())
	require.NoError(t, err)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, "Silpancho", q.Lines[0].ItemName)
	assert.Equal(t, "Platos", q.Lines[0].Category)
	assert.Equal(t, 2, q.Lines[0].Quantity)
	assert.Equal(t, pricing.SaleTotals{Subtotal: 60, Discount: 0, Tax: 7.8, Total: 67.8}, q.Totals)
}

func TestService_QuoteKeepsDistinctPrices(t *testing.T) {
	f := newFixture(t, openAllDay)
	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)

	q, err := f.svc.Quote(sales.SaleRequest{
		LocationID: 3,
		Items: []sales.ItemInput{
			{ItemName: "Extra", Quantity: 1, UnitPrice: fptr(5)},
			{ItemName: "extra ", Quantity: 1, UnitPrice: fptr(10)},
			{RecipeID: uptr(1), Quantity: 1, UnitPrice: fptr(20)},
			{RecipeID: uptr(1), Quantity: 1, UnitPrice: fptr(30)},
			{RecipeID: uptr(1), Quantity: 1, UnitPrice: fptr(30)},
		},
	})
	require.NoError(t, err)

	require.Len(t, q.Lines, 4)
	assert.Equal(t, 95.0, q.Totals.Subtotal)
	for _, l := range q.Lines {
		if l.RecipeID != nil && l.UnitPrice == 30 {
			assert.Equal(t, 2, l.Quantity)
		}
	}
}

func TestService_QuoteWithPromotion(t *testing.T) {
	f := newFixture(t, openAllDay)
	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)
	f.promos.On("Resolve", uint(4), uptr(3), 60.0, mock.Anything).
		Return(&models.Promotion{ID: 4, Name: "Martes 10%"}, 6.0, nil)

	req := basicRequest()
	req.PromotionID = uptr(4)
	q, err := f.svc.Quote(req)
	require.NoError(t, err)

	assert.Equal(t, "Martes 10%", q.PromotionName)
	assert.Equal(t, 6.0, q.Totals.Discount)
	assert.Equal(t, 61.8, q.Totals.Total)
}

func TestService_QuoteRejections(t *testing.T) {
	tests := []struct {
		name         string
		req          sales.SaleRequest
		prepareMocks func(f *fixture)
		want         error
	}{
		{
			name: "no items",
			req:  sales.SaleRequest{},
			want: sales.ErrEmptySale,
		},
		{
			name: "zero quantity",
			req:  sales.SaleRequest{Items: []sales.ItemInput{{ItemName: "Te", Quantity: 0}}},
			prepareMocks: func(f *fixture) {
				f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{}, nil)
			},
			want: sales.ErrInvalidItem,
		},
		{
			name: "unknown recipe",
			req:  sales.SaleRequest{Items: []sales.ItemInput{{RecipeID: uptr(9), Quantity: 1}}},
			prepareMocks: func(f *fixture) {
				f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{}, nil)
			},
			want: sales.ErrUnknownRecipe,
		},
		{
			name: "negative price",
			req:  sales.SaleRequest{Items: []sales.ItemInput{{ItemName: "Te", Quantity: 1, UnitPrice: fptr(-1)}}},
			prepareMocks: func(f *fixture) {
				f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{}, nil)
			},
			want: pricing.ErrNegativePrice,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, openAllDay)
			if tt.prepareMocks != nil {
				tt.prepareMocks(f)
			}
			_, err := f.svc.Quote(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t, openAllDay)
	actor := audit.Actor{UserID: 2, UserName: "Cajero"}

	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)
	f.stock.On("ItemsByIDs", []uint{5}).
		Return(map[uint]models.InventoryItem{5: {ID: 5, Name: "Carne", Unit: "kg", Quantity: 3}}, nil)
	f.repo.On("Create", mock.AnythingOfType("*models.Sale"), map[uint]float64{5: 0.5}, actor).
		Run(func(args mock.Arguments) {
			sale := args.Get(0).(*models.Sale)
			sale.ID = 42
			sale.CreatedAt = time.Now()
		}).
		Return(nil).Once()
	f.publisher.On("PublishSale", mock.Anything, mock.MatchedBy(func(ev events.SaleEvent) bool {
		return ev.Type == events.TypeSaleCompleted && ev.SaleID == 42 && ev.LocationID == 3 &&
			ev.Items == 3 && ev.Total == 67.8 && ev.UserID != nil && *ev.UserID == 2
	})).Return(nil).Once()

	req := basicRequest()
	req.Total = fptr(67.8)
	sale, err := f.svc.Create(context.Background(), req, actor)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^V-\d{8}-[0-9A-F]{8}$`), sale.SaleNumber)
	assert.Equal(t, models.SaleCompleted, sale.Status)
	assert.Equal(t, models.SaleLocal, sale.SaleType)
	assert.Equal(t, models.PaymentCash, sale.PaymentMethod)
	assert.Equal(t, 67.8, sale.Total)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 50.0, sale.Items[0].Total)
	assert.Empty(t, sale.Discounts)
}

func TestService_CreateRecordsPromotionDiscount(t *testing.T) {
	f := newFixture(t, openAllDay)

	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{}, nil)
	f.promos.On("Resolve", uint(4), mock.Anything, 20.0, mock.Anything).
		Return(&models.Promotion{ID: 4, Name: "Promo"}, 5.0, nil)
	f.repo.On("Create", mock.AnythingOfType("*models.Sale"), map[uint]float64{}, audit.Actor{}).Return(nil).Once()
	f.publisher.On("PublishSale", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	sale, err := f.svc.Create(context.Background(), sales.SaleRequest{
		LocationID:  1,
		PromotionID: uptr(4),
		Items:       []sales.ItemInput{{ItemName: "Jugo", Quantity: 2, UnitPrice: fptr(10)}},
	}, audit.Actor{})
	require.NoError(t, err, "a failed publish must not fail the sale")

	require.Len(t, sale.Discounts, 1)
	assert.Equal(t, "promotion", sale.Discounts[0].DiscountType)
	assert.Equal(t, uptr(4), sale.Discounts[0].PromotionID)
	assert.Equal(t, 5.0, sale.DiscountAmount)
	assert.Nil(t, sale.UserID)
}

func TestService_CreateRejections(t *testing.T) {
	closed := &config.Config{TaxRate: 0.13, BusinessOpenHour: 24, BusinessCloseHour: 24}

	tests := []struct {
		name         string
		cfg          *config.Config
		req          func() sales.SaleRequest
		actor        audit.Actor
		prepareMocks func(f *fixture)
		want         error
	}{
		{
			name: "closed",
			cfg:  closed,
			req:  basicRequest,
			want: sales.ErrClosed,
		},
		{
			name: "no location",
			cfg:  openAllDay,
			req: func() sales.SaleRequest {
				r := basicRequest()
				r.LocationID = 0
				return r
			},
			want: sales.ErrLocationRequired,
		},
		{
			name: "bad payment method",
			cfg:  openAllDay,
			req: func() sales.SaleRequest {
				r := basicRequest()
				r.PaymentMethod = "BITCOIN"
				return r
			},
			want: sales.ErrInvalidPayment,
		},
		{
			name: "client total off by more than a cent",
			cfg:  openAllDay,
			req: func() sales.SaleRequest {
				r := basicRequest()
				r.Total = fptr(67.82)
				return r
			},
			prepareMocks: func(f *fixture) {
				f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)
			},
			want: sales.ErrTotalsMismatch,
		},
		{
			name: "not enough beef",
			cfg:  openAllDay,
			req:  basicRequest,
			prepareMocks: func(f *fixture) {
				f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)
				f.stock.On("ItemsByIDs", []uint{5}).
					Return(map[uint]models.InventoryItem{5: {ID: 5, Name: "Carne", Unit: "kg", Quantity: 0.3}}, nil)
			},
			want: sales.ErrInsufficientStock,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.cfg)
			if tt.prepareMocks != nil {
				tt.prepareMocks(f)
			}
			_, err := f.svc.Create(context.Background(), tt.req(), tt.actor)
			assert.ErrorIs(t, err, tt.want)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateUsesActorLocation(t *testing.T) {
	f := newFixture(t, openAllDay)
	actor := audit.Actor{UserID: 2, LocationID: uptr(8)}

	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{}, nil)
	f.repo.On("Create", mock.MatchedBy(func(s *models.Sale) bool { return s.LocationID == 8 }), mock.Anything, actor).Return(nil)
	f.publisher.On("PublishSale", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), sales.SaleRequest{
		Items: []sales.ItemInput{{ItemName: "Te", Quantity: 1, UnitPrice: fptr(5)}},
	}, actor)
	require.NoError(t, err)
}

func TestService_Void(t *testing.T) {
	f := newFixture(t, openAllDay)
	actor := audit.Actor{UserID: 1}
	soldAt := time.Date(2026, 3, 2, 21, 30, 0, 0, time.Local)

	sale := &models.Sale{
		ID: 7, SaleNumber: "V-20260302-ABCDEF12", LocationID: 3, Total: 56.5, Status: models.SaleCompleted,
		CreatedAt: soldAt,
		Items:     []models.SaleItem{{RecipeID: uptr(1), Quantity: 2}, {ItemName: "Coca", Quantity: 1}},
	}
	voided := *sale
	voided.Status = models.SaleCancelled

	f.repo.On("Get", uint(7)).Return(sale, nil)
	f.repo.On("Void", uint(7), actor).Return(&voided, nil).Once()
	f.publisher.On("PublishSale", mock.Anything, mock.MatchedBy(func(ev events.SaleEvent) bool {
		return ev.Type == events.TypeSaleVoided && ev.OccurredAt.Equal(soldAt) && ev.Items == 3
	})).Return(nil).Once()

	got, err := f.svc.Void(context.Background(), 7, actor)
	require.NoError(t, err)
	assert.Equal(t, models.SaleCancelled, got.Status)
}

func TestService_VoidAlreadyCancelled(t *testing.T) {
	f := newFixture(t, openAllDay)
	f.repo.On("Get", uint(7)).Return(&models.Sale{ID: 7, Status: models.SaleCancelled}, nil)

	_, err := f.svc.Void(context.Background(), 7, audit.Actor{})
	assert.ErrorIs(t, err, sales.ErrAlreadyCancelled)
}

func TestService_TodayStats(t *testing.T) {
	f := newFixture(t, openAllDay)
	f.repo.On("Stats", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), (*uint)(nil)).
		Run(func(args mock.Arguments) {
			from, to := args.Get(0).(time.Time), args.Get(1).(time.Time)
			assert.Equal(t, 0, from.Hour())
			assert.Equal(t, 24*time.Hour, to.Sub(from))
		}).
		Return(sales.DayStats{TotalSales: 100, Count: 3, DishesSold: 7}, nil)

	stats, err := f.svc.TodayStats(nil)
	require.NoError(t, err)
	assert.Equal(t, 33.33, stats.AverageTicket)
	assert.Equal(t, int64(7), stats.DishesSold)
}

func TestNewSaleNumber(t *testing.T) {
	at := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)
	a, b := sales.NewSaleNumber(at), sales.NewSaleNumber(at)
	assert.Regexp(t, `^V-20260109-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}

func TestReceiptQR(t *testing.T) {
	g := sales.ReceiptQR{BaseURL: "https://pos.example.com/"}
	sale := models.Sale{SaleNumber: "V-20260109-0A1B2C3D"}

	assert.Equal(t, "https://pos.example.com/receipt?sale=V-20260109-0A1B2C3D", g.Link(sale))

	png, err := g.Generate(sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestCreateSaleHandler_StockConflict(t *testing.T) {
	f := newFixture(t, openAllDay)
	f.recipes.On("ByIDs", mock.Anything).Return(map[uint]models.Recipe{1: silpancho}, nil)
	f.stock.On("ItemsByIDs", []uint{5}).Return(map[uint]models.InventoryItem{}, nil)

	app := fiber.New()
	app.Post("/sales", sales.CreateSaleHandler(f.svc))

	body, _ := json.Marshal(sales.SaleRequest{LocationID: 1, Items: []sales.ItemInput{{RecipeID: uptr(1), Quantity: 1}}})
	req := httptest.NewRequest("POST", "/sales", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "insufficient stock")
}

func TestSaleQRCodeHandler(t *testing.T) {
	f := newFixture(t, openAllDay)
	sale := &models.Sale{ID: 7, SaleNumber: "V-1"}
	f.repo.On("Get", uint(7)).Return(sale, nil)
	f.repo.On("Get", uint(8)).Return(nil, sales.ErrSaleNotFound)
	f.qr.On("Generate", *sale).Return([]byte("\x89PNG-fake"), nil)

	app := fiber.New()
	app.Get("/sales/:id/qrcode", sales.SaleQRCodeHandler(f.svc))

	resp, err := app.Test(httptest.NewRequest("GET", "/sales/7/qrcode", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, err = app.Test(httptest.NewRequest("GET", "/sales/8/qrcode", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
