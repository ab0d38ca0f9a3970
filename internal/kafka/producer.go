package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/segmentio/kafka-go"

	"ms-records/internal/config"
	"ms-records/internal/logger"
)

// Entities and actions carried on the change feed.
const (
	EntityEvent = "event"
	EntityUser  = "user"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change is one message on the records change feed.
type Change struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Action     string          `json:"action"`
	Key        string          `json:"key"`
	OccurredAt int64           `json:"occurredAt"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// Type is the "<entity>.<action>" name of the change.
func (c Change) Type() string {
	return c.Entity + "." + c.Action
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes record changes keyed by the record key, so all changes
// to one record land on the same partition in order.
type Producer struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
	clock  clockwork.Clock
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger, clock clockwork.Clock) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newProducer(writer, cfg.Topic, log, clock)
}

func newProducer(writer messageWriter, topic string, log *logger.Logger, clock clockwork.Clock) *Producer {
	return &Producer{writer: writer, topic: topic, log: log, clock: clock}
}

// PublishCreated streams a record creation to Kafka
func (p *Producer) PublishCreated(ctx context.Context, entity, key string, record any) error {
	return p.publish(ctx, entity, ActionCreated, key, record)
}

// PublishUpdated streams a record update to Kafka
func (p *Producer) PublishUpdated(ctx context.Context, entity, key string, record any) error {
	return p.publish(ctx, entity, ActionUpdated, key, record)
}

// PublishDeleted streams a record deletion to Kafka. Deletions carry no
// record body.
func (p *Producer) PublishDeleted(ctx context.Context, entity, key string) error {
	return p.publish(ctx, entity, ActionDeleted, key, nil)
}

func (p *Producer) publish(ctx context.Context, entity, action, key string, record any) error {
	change := Change{
		ID:         uuid.NewString(),
		Entity:     entity,
		Action:     action,
		Key:        key,
		OccurredAt: p.clock.Now().Unix(),
	}
	if record != nil {
		body, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", entity, err)
		}
		change.Record = body
	}

	msgBytes, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entity + ":" + key),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(change.Type())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", change.Type(), err)
	}

	p.log.LogKafka("PUBLISH", p.topic, fmt.Sprintf("%s key=%s id=%s", change.Type(), key, change.ID))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when the change feed is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishCreated(context.Context, string, string, any) error { return nil }
func (NopPublisher) PublishUpdated(context.Context, string, string, any) error { return nil }
func (NopPublisher) PublishDeleted(context.Context, string, string) error      { return nil }
func (NopPublisher) Close() error                                              { return nil }
