package notify

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/event"
	"github.com/luciusscala/hackmitmentra/internal/job"
	"github.com/luciusscala/hackmitmentra/internal/metrics"
)

const defaultPublishTimeout = 5 * time.Second

// Publisher delivers an encoded event to the broker
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Diff returns a transition for every job in next whose status differs from
// prev, and for every job that is new in next. The first load of a view
// (hadData false) establishes the baseline and yields nothing.
func Diff(view string, prev, next []job.Job, hadData bool, now time.Time) []event.Transition {
	if !hadData {
		return nil
	}

	previous := make(map[string]job.Status, len(prev))
	for _, j := range prev {
		previous[j.TaskID] = j.Status
	}

	var out []event.Transition
	for _, j := range next {
		from, seen := previous[j.TaskID]
		if seen && from == j.Status {
			continue
		}
		out = append(out, event.NewTransition(view, j, from, now))
	}
	return out
}

// Config holds notifier configuration
type Config struct {
	View           string
	Publisher      Publisher
	Logger         *slog.Logger
	PublishTimeout time.Duration
}

// Notifier publishes job transitions observed by a poller.
// Publish failures are logged and never reach the poller.
type Notifier struct {
	view           string
	publisher      Publisher
	logger         *slog.Logger
	publishTimeout time.Duration
	now            func() time.Time
}

// New creates a new Notifier
func New(cfg *Config) *Notifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Notifier{
		view:           cfg.View,
		publisher:      cfg.Publisher,
		logger:         logger,
		publishTimeout: timeout,
		now:            time.Now,
	}
}

// OnUpdate has the signature of poller.UpdateFunc
func (n *Notifier) OnUpdate(prev, next []job.Job, hadData bool) {
	transitions := Diff(n.view, prev, next, hadData, n.now())
	if len(transitions) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.publishTimeout)
	defer cancel()

	for _, t := range transitions {
		n.publish(ctx, t)
	}
}

func (n *Notifier) publish(ctx context.Context, t event.Transition) {
	body, err := t.Encode()
	if err == nil {
		err = n.publisher.PublishWithRetry(ctx, body, event.ContentType)
	}

	metrics.TransitionsPublishedTotal.WithLabelValues(t.ToStatus, strconv.FormatBool(err == nil)).Inc()

	if err != nil {
		n.logger.Error("Failed to publish job transition",
			slog.String("event_id", t.EventID),
			slog.String("task_id", t.TaskID),
			slog.String("to_status", t.ToStatus),
			slog.String("error", err.Error()),
		)
		return
	}

	n.logger.Info("Job transition published",
		slog.String("event_id", t.EventID),
		slog.String("task_id", t.TaskID),
		slog.String("from_status", t.FromStatus),
		slog.String("to_status", t.ToStatus),
	)
}
