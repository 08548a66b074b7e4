package mocks

import (
	"context"

	"gastro-backend/internal/events"

	"github.com/stretchr/testify/mock"
)

type CounterStore struct {
	mock.Mock
}

func (m *CounterStore) Apply(ctx context.Context, ev events.SaleEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func NewCounterStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *CounterStore {
	m := &CounterStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) PublishSale(ctx context.Context, ev events.SaleEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func NewPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Publisher {
	m := &Publisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
