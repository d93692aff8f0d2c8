package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/iho/axiompay/internal/domain"
	"github.com/iho/axiompay/internal/usecase"
)

// LogPublisher writes events to the structured log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// PublishSubscriptionScheduled logs the event.
func (p *LogPublisher) PublishSubscriptionScheduled(_ context.Context, event domain.SubscriptionScheduledEvent) error {
	p.logger.Info().
		Str("event_type", domain.EventTypeSubscriptionScheduled).
		Str("subscription_id", event.SubscriptionID).
		Str("payer", event.PayerAccountID).
		Str("amount", event.Amount).
		Str("frequency", event.Frequency).
		Str("schedule_id", event.ScheduleID).
		Str("transaction_id", event.TransactionID).
		Msg("event published")
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic, keyed by payer account so
// events for one payer stay ordered.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishSubscriptionScheduled encodes event as JSON and writes it.
func (p *KafkaPublisher) PublishSubscriptionScheduled(ctx context.Context, event domain.SubscriptionScheduledEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PayerAccountID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(domain.EventTypeSubscriptionScheduled)},
		},
	})
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// EventMetrics records publish outcomes.
type EventMetrics interface {
	ObserveEvent(eventType string, err error)
}

// Instrumented wraps a publisher with metrics.
type Instrumented struct {
	next    usecase.EventPublisher
	metrics EventMetrics
}

// NewInstrumented creates an Instrumented publisher.
func NewInstrumented(next usecase.EventPublisher, metrics EventMetrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

// PublishSubscriptionScheduled delegates and records the outcome.
func (p *Instrumented) PublishSubscriptionScheduled(ctx context.Context, event domain.SubscriptionScheduledEvent) error {
	err := p.next.PublishSubscriptionScheduled(ctx, event)
	p.metrics.ObserveEvent(domain.EventTypeSubscriptionScheduled, err)
	return err
}
