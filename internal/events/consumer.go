package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

type CounterStore interface {
	Apply(ctx context.Context, ev SaleEvent) error
}

// Consumer feeds sale events from the sales topic into the live counters.
type Consumer struct {
	Reader *kafka.Reader
	Store  CounterStore
}

func NewConsumer(reader *kafka.Reader, store CounterStore) *Consumer {
	return &Consumer{Reader: reader, Store: store}
}

func (c *Consumer) Start(ctx context.Context) {
	log.Println("Starting sales aggregator...")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("Sales aggregator stopped")
				return
			}
			log.Printf("[WARN] reading sale event: %v", err)
			continue
		}

		var ev SaleEvent
		if err := json.Unmarshal(message.Value, &ev); err != nil {
			log.Printf("[WARN] decoding sale event: %v", err)
			continue
		}

		if err := c.Process(ctx, ev); err != nil {
			log.Printf("[WARN] applying sale event %s: %v", ev.SaleNumber, err)
		}
	}
}

// Process ignores event types it does not know.
func (c *Consumer) Process(ctx context.Context, ev SaleEvent) error {
	if ev.Type != TypeSaleCompleted && ev.Type != TypeSaleVoided {
		return nil
	}
	return c.Store.Apply(ctx, ev)
}

// InProcessPublisher hands events straight to a Consumer. It keeps the live
// counters running when Redis is configured but Kafka is not.
type InProcessPublisher struct {
	Consumer *Consumer
}

func (p InProcessPublisher) PublishSale(ctx context.Context, ev SaleEvent) error {
	return p.Consumer.Process(ctx, ev)
}
