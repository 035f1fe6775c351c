package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"leadhub/internal/dedup/models"
	dErrors "leadhub/pkg/domain-errors"
	"leadhub/pkg/requestcontext"
)

// Runner executes the dedup run a job asks for.
type Runner interface {
	ExecuteForAllProducts(ctx context.Context) ([]models.ProductOutcome, error)
}

// Consumer is the consuming side of an AMQP channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consumes dedup jobs with manual acknowledgements.
type Worker struct {
	ch     Consumer
	runner Runner
	logger *slog.Logger
}

func NewWorker(ch Consumer, runner Runner, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{ch: ch, runner: runner, logger: logger}
}

// Run consumes until ctx is done or the delivery channel closes.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.ch.Consume(QueueName, "leadhub-dedup-worker", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", QueueName, err)
	}
	w.logger.InfoContext(ctx, "dedup worker started", "queue", QueueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

// handle runs one delivery. A malformed job or a failed run is
// dead-lettered. A run rejected because another run held the lock is
// requeued once, then dead-lettered.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.ErrorContext(ctx, "malformed dedup job", "error", err)
		w.nack(ctx, d, false)
		return
	}
	if job.RequestID != "" {
		ctx = requestcontext.WithRequestID(ctx, job.RequestID)
	}

	outcomes, err := w.runner.ExecuteForAllProducts(ctx)
	if err != nil {
		requeue := dErrors.HasCode(err, dErrors.CodeConflict) && !d.Redelivered
		w.logger.WarnContext(ctx, "dedup job failed",
			"p_id", job.PID.String(),
			"source_id", job.SourceID.String(),
			"requeue", requeue,
			"error", err,
		)
		w.nack(ctx, d, requeue)
		return
	}

	summary := models.Summarize(outcomes, 0)
	w.logger.InfoContext(ctx, "dedup job completed",
		"p_id", job.PID.String(),
		"source_id", job.SourceID.String(),
		"products", len(outcomes),
		"merged_count", summary.MergedCount,
	)
	if err := d.Ack(false); err != nil {
		w.logger.ErrorContext(ctx, "failed to ack dedup job", "error", err)
	}
}

func (w *Worker) nack(ctx context.Context, d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		w.logger.ErrorContext(ctx, "failed to nack dedup job", "error", err)
	}
}
