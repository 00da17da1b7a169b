package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luciusscala/hackmitmentra/internal/metrics"
	"github.com/luciusscala/hackmitmentra/internal/worker/domain"
)

// processEvent stores one event. A nil return means the delivery can be ACKed.
func (w *Worker) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	if msg == nil || msg.Event == nil {
		metrics.EventsProcessedTotal.WithLabelValues("invalid").Inc()
		return domain.ErrInvalidPayload
	}

	w.logger.Debug("Processing event",
		slog.String("event_id", msg.Event.EventID),
		slog.String("task_id", msg.Event.TaskID),
	)

	storeCtx := ctx
	if w.eventTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, w.eventTimeout)
		defer cancel()
	}

	err := w.storage.InsertEvent(storeCtx, msg.Event)
	switch {
	case err == nil:
		metrics.EventsProcessedTotal.WithLabelValues("stored").Inc()
		return nil

	case errors.Is(err, domain.ErrDuplicateEvent):
		// redelivery of an event we already have
		metrics.EventsProcessedTotal.WithLabelValues("duplicate").Inc()
		return nil

	default:
		metrics.EventsProcessedTotal.WithLabelValues("retry").Inc()
		w.logger.Error("Failed to store event",
			slog.String("event_id", msg.Event.EventID),
			slog.String("error", err.Error()),
		)
		return domain.NewRetryableError(fmt.Errorf("failed to store event: %w", err))
	}
}
