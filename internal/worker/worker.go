package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luciusscala/hackmitmentra/internal/event"
	"github.com/luciusscala/hackmitmentra/internal/worker/domain"
	"github.com/luciusscala/hackmitmentra/shared/rabbitmq"
)

// EventStore persists transitions
type EventStore interface {
	InsertEvent(ctx context.Context, t *event.Transition) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Storage       EventStore
	RabbitClient  *rabbitmq.Client
	Concurrency   int
	PrefetchCount int
	EventTimeout  time.Duration
	QueueName     string
}

// Worker stores transition events consumed from RabbitMQ
type Worker struct {
	logger            *slog.Logger
	storage           EventStore
	rabbitClient      *rabbitmq.Client
	workerID          string
	concurrency       int
	prefetchCount     int
	eventTimeout      time.Duration
	rabbitMQQueueName string
	jobsChan          chan *domain.EventMessage
	wg                sync.WaitGroup
	stopChan          chan struct{}
	stopOnce          sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}

	return &Worker{
		logger:            cfg.Logger,
		storage:           cfg.Storage,
		rabbitClient:      cfg.RabbitClient,
		workerID:          fmt.Sprintf("event-worker-%s", uuid.NewString()[:8]),
		concurrency:       concurrency,
		prefetchCount:     prefetch,
		eventTimeout:      cfg.EventTimeout,
		rabbitMQQueueName: cfg.QueueName,
		jobsChan:          make(chan *domain.EventMessage, concurrency),
		stopChan:          make(chan struct{}),
	}
}

// Start consumes events until ctx is canceled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("event_timeout", w.eventTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker and waits for in-flight events
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("Worker stopped")
	})
}
