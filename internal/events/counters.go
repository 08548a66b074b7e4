package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterTTL = 7 * 24 * time.Hour

// DailyStats is the live view of one day at one location (LocationID 0 is
// every location together).
type DailyStats struct {
	Date       string  `json:"date"`
	LocationID uint    `json:"location_id"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	Items      int64   `json:"items"`
}

type RedisCounters struct {
	rdb *redis.Client
}

func NewRedisCounters(rdb *redis.Client) *RedisCounters {
	return &RedisCounters{rdb: rdb}
}

func DailyKey(date string, locationID uint) string {
	if locationID == 0 {
		return fmt.Sprintf("sales:daily:%s:all", date)
	}
	return fmt.Sprintf("sales:daily:%s:%d", date, locationID)
}

// Apply adds a completed sale to its day, or takes a voided one back out.
func (s *RedisCounters) Apply(ctx context.Context, ev SaleEvent) error {
	var sign int64
	switch ev.Type {
	case TypeSaleCompleted:
		sign = 1
	case TypeSaleVoided:
		sign = -1
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	day := ev.OccurredAt.Format("2006-01-02")
	pipe := s.rdb.TxPipeline()
	for _, key := range []string{DailyKey(day, ev.LocationID), DailyKey(day, 0)} {
		pipe.HIncrByFloat(ctx, key, "total", float64(sign)*ev.Total)
		pipe.HIncrBy(ctx, key, "count", sign)
		pipe.HIncrBy(ctx, key, "items", sign*int64(ev.Items))
		pipe.Expire(ctx, key, counterTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisCounters) Daily(ctx context.Context, date string, locationID uint) (DailyStats, error) {
	stats := DailyStats{Date: date, LocationID: locationID}

	vals, err := s.rdb.HGetAll(ctx, DailyKey(date, locationID)).Result()
	if err != nil {
		return stats, err
	}
	if v, ok := vals["total"]; ok {
		stats.Total, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := vals["count"]; ok {
		stats.Count, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := vals["items"]; ok {
		stats.Items, _ = strconv.ParseInt(v, 10, 64)
	}
	return stats, nil
}
