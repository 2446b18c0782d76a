package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ChangeEvent describes a successful write against a table.
type ChangeEvent struct {
	EventID      string         `json:"event_id"`
	Table        string         `json:"table"`
	Operation    string         `json:"operation"`
	Values       map[string]any `json:"values,omitempty"`
	Filters      map[string]any `json:"filters,omitempty"`
	RowsAffected int64          `json:"rows_affected"`
	LastInsertID int64          `json:"last_insert_id,omitempty"`
	Source       string         `json:"source"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// Publisher emits change events to Kafka, keyed by table so events for one
// table stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher builds a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			MaxAttempts:            3,
			WriteTimeout:           10 * time.Second,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger.With(zap.String("component", "publisher"), zap.String("topic", topic)),
	}
}

// Publish writes one event and waits for the brokers to acknowledge it.
func (p *Publisher) Publish(ctx context.Context, event ChangeEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish change event",
			zap.String("event_id", event.EventID),
			zap.String("table", event.Table),
			zap.Error(err),
		)
		return fmt.Errorf("write kafka message: %w", err)
	}

	p.logger.Debug("change event published",
		zap.String("event_id", event.EventID),
		zap.String("table", event.Table),
		zap.String("operation", event.Operation),
	)
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encode(event ChangeEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal change event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Table),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "operation", Value: []byte(event.Operation)},
		},
	}, nil
}

// NoopPublisher discards events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ChangeEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Sink publishes change events and releases its resources on Close.
type Sink interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Close() error
}

// NewSink returns a Kafka publisher, or a NoopPublisher when no brokers are
// configured.
func NewSink(brokers []string, topic string, logger *zap.Logger) Sink {
	if len(brokers) == 0 {
		return NoopPublisher{}
	}
	return NewPublisher(brokers, topic, logger)
}
