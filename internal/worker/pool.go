package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luciusscala/hackmitmentra/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop stores events from jobsChan until the worker stops
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	logger := w.logger.With(slog.String("worker_name", fmt.Sprintf("%s-%d", w.workerID, workerNum)))
	logger.Debug("Pool worker started")

	for {
		select {
		case <-w.stopChan:
			logger.Debug("Pool worker stopping")
			return
		case <-ctx.Done():
			logger.Debug("Pool worker stopping, context canceled")
			return
		case msg := <-w.jobsChan:
			w.settle(logger, msg, w.processEvent(ctx, msg))
		}
	}
}

// settle ACKs a handled delivery or NACKs it, requeueing only retryable failures
func (w *Worker) settle(logger *slog.Logger, msg *domain.EventMessage, err error) {
	logger = logger.With(slog.Uint64("delivery_tag", msg.DeliveryTag))
	if msg.Event != nil {
		logger = logger.With(slog.String("event_id", msg.Event.EventID))
	}

	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		logger.Error("No RabbitMQ channel to settle delivery")
		return
	}

	if err == nil {
		if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
			logger.Error("Failed to ACK delivery", slog.String("error", ackErr.Error()))
		}
		return
	}

	requeue := shouldRequeue(err)
	if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
		logger.Error("Failed to NACK delivery", slog.String("error", nackErr.Error()))
		return
	}
	logger.Info("Delivery NACKed",
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)
}

// shouldRequeue reports whether a failed event should go back on the queue.
// Only errors marked retryable are requeued.
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrInvalidPayload) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
