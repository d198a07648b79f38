package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"paygate/internal/messaging"
	"paygate/pkg/correlation"

	"github.com/segmentio/kafka-go"
)

// writer is the part of *kafka.Writer the publisher uses.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes session envelopes to Kafka. Messages are keyed by the
// envelope key, so all events for one reference land on one partition.
type Publisher struct {
	writer writer
	topic  string
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		},
		topic: topic,
	}
}

func (p *Publisher) Publish(ctx context.Context, env messaging.Envelope) error {
	if env.CorrelationID == "" {
		env.CorrelationID = correlation.FromContext(ctx)
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.Type)},
		},
	}
	if env.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: correlation.KafkaHeaderName, Value: []byte(env.CorrelationID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	slog.DebugContext(ctx, "event published",
		slog.String("topic", p.topic),
		slog.String("key", env.Key),
		slog.String("event_id", env.EventID),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
