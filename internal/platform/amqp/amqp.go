// Package amqp dials RabbitMQ and declares the deduplication job topology.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"

	"leadhub/internal/dedup/queue"
)

// Broker holds one connection and the channel used for publishing and
// consuming deduplication jobs.
type Broker struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// Connect dials url, retrying while the broker comes up, opens a channel and
// declares the job exchange, queue and dead letter queue.
func Connect(ctx context.Context, url string, logger *slog.Logger) (*Broker, error) {
	var conn *amqp.Connection
	backoff := retry.WithMaxRetries(5, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := amqp.Dial(url)
		if err != nil {
			logger.WarnContext(ctx, "rabbitmq not ready", "error", err)
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set rabbitmq qos: %w", err)
	}
	if err := queue.Setup(ch); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Broker{Conn: conn, Ch: ch}, nil
}

// Health fails once the connection has been closed.
func (b *Broker) Health(context.Context) error {
	if b.Conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (b *Broker) Close() error {
	return errors.Join(b.Ch.Close(), b.Conn.Close())
}
