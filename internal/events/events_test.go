package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gastro-backend/internal/events"
	"gastro-backend/internal/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConsumer_Process(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		event         events.SaleEvent
		prepareMocks  func(*mocks.CounterStore)
		expectedError bool
	}{
		{
			name:  "completed",
			event: events.SaleEvent{Type: events.TypeSaleCompleted, SaleID: 1, LocationID: 2, Total: 40},
			prepareMocks: func(s *mocks.CounterStore) {
				s.On("Apply", ctx, mock.MatchedBy(func(ev events.SaleEvent) bool { return ev.SaleID == 1 })).Return(nil).Once()
			},
		},
		{
			name:  "voided",
			event: events.SaleEvent{Type: events.TypeSaleVoided, SaleID: 1, LocationID: 2, Total: 40},
			prepareMocks: func(s *mocks.CounterStore) {
				s.On("Apply", ctx, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "store error",
			event: events.SaleEvent{Type: events.TypeSaleCompleted, SaleID: 3},
			prepareMocks: func(s *mocks.CounterStore) {
				s.On("Apply", ctx, mock.Anything).Return(errors.New("redis down")).Once()
			},
			expectedError: true,
		},
		{
			name:         "unknown type",
			event:        events.SaleEvent{Type: "sale.refunded"},
			prepareMocks: func(*mocks.CounterStore) {},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store := mocks.NewCounterStore(t)
			testCase.prepareMocks(store)

			consumer := &events.Consumer{Store: store}
			err := consumer.Process(ctx, testCase.event)
			if testCase.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInProcessPublisher(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewCounterStore(t)
	store.On("Apply", ctx, mock.Anything).Return(nil).Once()

	pub := events.InProcessPublisher{Consumer: &events.Consumer{Store: store}}
	assert.NoError(t, pub.PublishSale(ctx, events.SaleEvent{Type: events.TypeSaleCompleted}))
}

func TestRedisCounters(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	counters := events.NewRedisCounters(rdb)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

	require.NoError(t, counters.Apply(ctx, events.SaleEvent{
		Type: events.TypeSaleCompleted, LocationID: 2, Total: 40.5, Items: 3, OccurredAt: day,
	}))
	require.NoError(t, counters.Apply(ctx, events.SaleEvent{
		Type: events.TypeSaleCompleted, LocationID: 5, Total: 10, Items: 1, OccurredAt: day,
	}))
	require.NoError(t, counters.Apply(ctx, events.SaleEvent{
		Type: events.TypeSaleVoided, LocationID: 5, Total: 10, Items: 1, OccurredAt: day,
	}))

	loc2, err := counters.Daily(ctx, "2026-03-14", 2)
	require.NoError(t, err)
	assert.InDelta(t, 40.5, loc2.Total, 1e-9)
	assert.Equal(t, int64(1), loc2.Count)
	assert.Equal(t, int64(3), loc2.Items)

	all, err := counters.Daily(ctx, "2026-03-14", 0)
	require.NoError(t, err)
	assert.InDelta(t, 40.5, all.Total, 1e-9)
	assert.Equal(t, int64(1), all.Count)

	assert.True(t, mr.Exists(events.DailyKey("2026-03-14", 2)))
	assert.Error(t, counters.Apply(ctx, events.SaleEvent{Type: "bogus", OccurredAt: day}))
}

func TestDailyKey(t *testing.T) {
	assert.Equal(t, "sales:daily:2026-03-14:all", events.DailyKey("2026-03-14", 0))
	assert.Equal(t, "sales:daily:2026-03-14:7", events.DailyKey("2026-03-14", 7))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, events.NopPublisher{}.PublishSale(context.Background(), events.SaleEvent{}))
}
