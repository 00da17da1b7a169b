package model

import "time"

// Event is a stored job transition
type Event struct {
	EventID    string    `db:"event_id"`
	View       string    `db:"view"`
	TaskID     string    `db:"task_id"`
	Filename   string    `db:"filename"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	ObservedAt time.Time `db:"observed_at"`
	CreatedAt  time.Time `db:"created_at"`
}
