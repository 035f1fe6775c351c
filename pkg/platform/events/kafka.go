package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"leadhub/pkg/platform/circuit"
)

// Producer is the subset of *kgo.Client the Kafka publisher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Emitter is anything that accepts events. The Kafka publisher hands events
// to its fallback while the breaker is open.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// KafkaPublisher writes each event as one JSON record keyed by Event.Key.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
	breaker  *circuit.Breaker
	fallback Emitter
}

// Option configures the KafkaPublisher.
type Option func(*KafkaPublisher)

// WithLogger sets a logger for publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

// WithBreaker sends events to fallback once the broker has failed enough
// times in a row to open breaker. Kafka is still tried first on every event
// so the breaker can close again.
func WithBreaker(breaker *circuit.Breaker, fallback Emitter) Option {
	return func(p *KafkaPublisher) {
		p.breaker = breaker
		p.fallback = fallback
	}
}

func NewKafkaPublisher(producer Producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to publish event",
				"event_type", string(event.Type),
				"event_id", event.ID,
				"error", err,
			)
		}
		if p.breaker != nil {
			useFallback, change := p.breaker.RecordFailure()
			if change.Opened {
				p.logState(ctx, "event publisher circuit opened")
			}
			if useFallback {
				return p.fallback.Emit(ctx, event)
			}
		}
		return fmt.Errorf("produce event: %w", err)
	}
	if p.breaker != nil {
		if _, change := p.breaker.RecordSuccess(); change.Closed {
			p.logState(ctx, "event publisher circuit closed")
		}
	}
	return nil
}

func (p *KafkaPublisher) logState(ctx context.Context, msg string) {
	if p.logger != nil {
		p.logger.WarnContext(ctx, msg, "breaker", p.breaker.Name(), "topic", p.topic)
	}
}

func (p *KafkaPublisher) Close() error {
	p.producer.Close()
	return nil
}
