package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-records/internal/config"
	"ms-records/internal/logger"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer follows the records change feed.
type Consumer struct {
	reader messageReader
	topic  string
	log    *logger.Logger
}

// NewConsumer creates a new Kafka consumer for the change topic and group
func NewConsumer(cfg config.KafkaConfig, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, topic: cfg.Topic, log: log}
}

// Run hands every decodable change to handler until ctx is cancelled.
// Messages that fail to decode are logged and skipped.
func (c *Consumer) Run(ctx context.Context, handler func(Change)) error {
	c.log.LogKafka("CONSUME", c.topic, "Change feed consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read change: %w", err)
		}

		var change Change
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			c.log.Warn("KAFKA", fmt.Sprintf("Skipping undecodable message at offset %d: %v", msg.Offset, err))
			continue
		}

		handler(change)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
