package events

import (
	"context"
	"fmt"

	"resort/pkg/kafka"
	"resort/pkg/logger"
	"resort/pkg/model"
)

const (
	Source        = "bookings"
	SchemaVersion = "1"
)

// Publisher emits booking lifecycle events after the state change committed.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NewMessage encodes event keyed by booking ID so every event of a booking
// lands on the same partition in order.
func NewMessage(event model.BookingEvent) (kafka.Message, error) {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(event.Reference).
		Build()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return msg, nil
}

type logPublisher struct {
	log *logger.Logger
}

// NewLogPublisher is used when Kafka is disabled; events are only logged.
func NewLogPublisher(log *logger.Logger) Publisher {
	return &logPublisher{log: log}
}

func (p *logPublisher) Publish(_ context.Context, event model.BookingEvent) error {
	p.log.Debug("Booking event",
		"type", event.Type,
		"booking_id", event.BookingID,
		"reference", event.Reference,
		"status", event.Status,
	)
	return nil
}
