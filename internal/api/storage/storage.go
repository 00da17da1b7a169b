package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/luciusscala/hackmitmentra/internal/api/model"
	"github.com/luciusscala/hackmitmentra/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

type EventFilter struct {
	TaskID   string
	ToStatus string
	PageSize int
	Cursor   *EventCursor
}

type EventCursor struct {
	ObservedAt time.Time
	EventID    string
}

// ListEvents returns up to PageSize+1 events, newest first, so callers can
// tell whether another page exists.
func (s *Storage) ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	query, args := buildListEventsQuery(filter)

	var events []model.Event
	err := s.db.SelectContext(ctx, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

func buildListEventsQuery(filter EventFilter) (string, []interface{}) {
	query := `
        SELECT
            event_id, view, task_id, filename,
            from_status, to_status, observed_at, created_at
        FROM job_events
        WHERE 1=1
    `
	args := []interface{}{}
	argIdx := 1

	if filter.TaskID != "" {
		query += fmt.Sprintf(" AND task_id = $%d", argIdx)
		args = append(args, filter.TaskID)
		argIdx++
	}

	if filter.ToStatus != "" {
		query += fmt.Sprintf(" AND to_status = $%d", argIdx)
		args = append(args, filter.ToStatus)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (observed_at, event_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.ObservedAt, filter.Cursor.EventID)
		argIdx += 2
	}

	query += " ORDER BY observed_at DESC, event_id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	return query, args
}
