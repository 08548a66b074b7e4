package mocks

import (
	"time"

	"gastro-backend/internal/audit"
	"gastro-backend/internal/models"
	"gastro-backend/internal/promotions"

	"github.com/stretchr/testify/mock"
)

type PromotionRepository struct {
	mock.Mock
}

func (m *PromotionRepository) List(f promotions.Filter) ([]models.Promotion, error) {
	args := m.Called(f)
	promos, _ := args.Get(0).([]models.Promotion)
	return promos, args.Error(1)
}

func (m *PromotionRepository) Get(id uint) (*models.Promotion, error) {
	args := m.Called(id)
	p, _ := args.Get(0).(*models.Promotion)
	return p, args.Error(1)
}

func (m *PromotionRepository) ActiveAt(locationID *uint, at time.Time) ([]models.Promotion, error) {
	args := m.Called(locationID, at)
	promos, _ := args.Get(0).([]models.Promotion)
	return promos, args.Error(1)
}

func (m *PromotionRepository) Create(p *models.Promotion, actor audit.Actor) error {
	args := m.Called(p, actor)
	return args.Error(0)
}

func (m *PromotionRepository) Update(p *models.Promotion, before models.Promotion, actor audit.Actor) error {
	args := m.Called(p, before, actor)
	return args.Error(0)
}

func (m *PromotionRepository) Delete(id uint, actor audit.Actor) error {
	args := m.Called(id, actor)
	return args.Error(0)
}

func NewPromotionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *PromotionRepository {
	m := &PromotionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
