package storage

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/luciusscala/hackmitmentra/internal/event"
	"github.com/luciusscala/hackmitmentra/internal/worker/domain"
)

//go:embed schema.sql
var schema string

const insertEventQuery = `
	INSERT INTO job_events (
		event_id, view, task_id, filename,
		from_status, to_status, observed_at
	) VALUES (
		:event_id, :view, :task_id, :filename,
		:from_status, :to_status, :observed_at
	)
	ON CONFLICT (event_id) DO NOTHING
`

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the job_events table and its indexes if missing
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// InsertEvent stores a transition. Redelivered events are ignored and
// reported as domain.ErrDuplicateEvent.
func (s *Storage) InsertEvent(ctx context.Context, t *event.Transition) error {
	result, err := s.db.NamedExecContext(ctx, insertEventQuery, t)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Event already stored",
			slog.String("event_id", t.EventID),
			slog.String("task_id", t.TaskID),
		)
		return domain.ErrDuplicateEvent
	}

	s.logger.Info("Event stored",
		slog.String("event_id", t.EventID),
		slog.String("task_id", t.TaskID),
		slog.String("to_status", t.ToStatus),
	)

	return nil
}
