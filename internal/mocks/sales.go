package mocks

import (
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"
	"gastro-backend/internal/pricing"
	"gastro-backend/internal/sales"

	"github.com/stretchr/testify/mock"
)

type SaleRepository struct {
	mock.Mock
}

func (m *SaleRepository) List(f sales.Filter) ([]models.Sale, error) {
	args := m.Called(f)
	out, _ := args.Get(0).([]models.Sale)
	return out, args.Error(1)
}

func (m *SaleRepository) Get(id uint) (*models.Sale, error) {
	args := m.Called(id)
	sale, _ := args.Get(0).(*models.Sale)
	return sale, args.Error(1)
}

func (m *SaleRepository) Create(sale *models.Sale, consume map[uint]float64, actor audit.Actor) error {
	args := m.Called(sale, consume, actor)
	return args.Error(0)
}

func (m *SaleRepository) Void(id uint, actor audit.Actor) (*models.Sale, error) {
	args := m.Called(id, actor)
	sale, _ := args.Get(0).(*models.Sale)
	return sale, args.Error(1)
}

func (m *SaleRepository) Stats(from, to time.Time, locationID *uint) (sales.DayStats, error) {
	args := m.Called(from, to, locationID)
	stats, _ := args.Get(0).(sales.DayStats)
	return stats, args.Error(1)
}

func NewSaleRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *SaleRepository {
	m := &SaleRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type RecipeSource struct {
	mock.Mock
}

func (m *RecipeSource) ByIDs(ids []uint) (map[uint]models.Recipe, error) {
	args := m.Called(ids)
	out, _ := args.Get(0).(map[uint]models.Recipe)
	return out, args.Error(1)
}

func NewRecipeSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *RecipeSource {
	m := &RecipeSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type StockSource struct {
	mock.Mock
}

func (m *StockSource) ItemsByIDs(ids []uint) (map[uint]models.InventoryItem, error) {
	args := m.Called(ids)
	out, _ := args.Get(0).(map[uint]models.InventoryItem)
	return out, args.Error(1)
}

func NewStockSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *StockSource {
	m := &StockSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type PromotionResolver struct {
	mock.Mock
}

func (m *PromotionResolver) Resolve(id uint, locationID *uint, subtotal float64, lines []pricing.CartLine) (*models.Promotion, float64, error) {
	args := m.Called(id, locationID, subtotal, lines)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Get(1).(float64), args.Error(2)
}

func NewPromotionResolver(t interface {
	mock.TestingT
	Cleanup(func())
}) *PromotionResolver {
	m := &PromotionResolver{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type QRGenerator struct {
	mock.Mock
}

func (m *QRGenerator) Generate(sale models.Sale) ([]byte, error) {
	args := m.Called(sale)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

func NewQRGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
