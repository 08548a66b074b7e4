package config

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// NewRedisClient returns nil when REDIS_ADDR is unset.
func (c *Config) NewRedisClient() *redis.Client {
	if c.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("[FATAL] could not connect to Redis at %s: %v", c.RedisAddr, err)
	}
	return client
}

func (c *Config) NewKafkaWriter() *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(c.KafkaBroker),
		Topic:    c.SalesTopic,
		Balancer: &kafka.Hash{},
	}
}

func (c *Config) NewKafkaReader(groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{c.KafkaBroker},
		Topic:   c.SalesTopic,
		GroupID: groupID,
	})
}
