// Package queue moves upload-triggered dedup runs onto RabbitMQ. The upload
// path publishes a Job and a Worker runs it; failed jobs are dead-lettered.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	id "leadhub/pkg/domain"
)

const (
	ExchangeName = "leadhub.dedup"
	QueueName    = "leadhub.dedup.jobs"
	DLXName      = "leadhub.dedup.dlx"
	DLQName      = "leadhub.dedup.dlq"
	RoutingKey   = "dedup.all_products"
)

// Job asks for a dedup run over every product after an upload.
type Job struct {
	RequestID  string       `json:"requestId,omitempty"`
	PID        id.ProductID `json:"pId"`
	SourceID   id.SourceID  `json:"sourceId"`
	EnqueuedAt time.Time    `json:"enqueuedAt"`
}

// Topology declares exchanges and queues. *amqp.Channel satisfies it.
type Topology interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Setup declares the job queue and its dead-letter queue. Declarations are
// idempotent so every process runs Setup on start.
func Setup(ch Topology) error {
	if err := ch.ExchangeDeclare(DLXName, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", DLXName, err)
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", DLQName, err)
	}
	if err := ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", DLQName, err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeName, err)
	}
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueName, err)
	}
	if err := ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", QueueName, err)
	}
	return nil
}

// Channel is the publishing side of an AMQP channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher enqueues dedup jobs as persistent messages.
type Publisher struct {
	ch Channel
}

func NewPublisher(ch Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Enqueue publishes job.
func (p *Publisher) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode dedup job: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    job.EnqueuedAt,
		MessageId:    job.RequestID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish dedup job: %w", err)
	}
	return nil
}
