package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"resort/pkg/kafka"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	consume := m.ConsumerMiddleware()
	publish := m.ProducerMiddleware()

	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("boom") }

	ctx := context.Background()
	_ = consume(ctx, kafka.Message{}, ok)
	_ = consume(ctx, kafka.Message{}, ok)
	_ = consume(ctx, kafka.Message{}, fail)
	_ = publish(ctx, kafka.Message{}, fail)

	s := m.Snapshot()
	if s.Consumed != 2 || s.ConsumeFailed != 1 {
		t.Errorf("consumer counts = %d/%d, want 2/1", s.Consumed, s.ConsumeFailed)
	}
	if s.Published != 0 || s.PublishFailed != 1 {
		t.Errorf("producer counts = %d/%d, want 0/1", s.Published, s.PublishFailed)
	}
}

func TestMetrics_PassesErrorThrough(t *testing.T) {
	want := errors.New("boom")
	err := NewMetrics().ConsumerMiddleware()(context.Background(), kafka.Message{}, func(context.Context, kafka.Message) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
