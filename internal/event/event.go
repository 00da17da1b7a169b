package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luciusscala/hackmitmentra/internal/job"
)

// ContentType is the content type events are published with
const ContentType = "application/json"

// ErrInvalidEvent is returned when a payload cannot be used as a transition event
var ErrInvalidEvent = errors.New("invalid transition event")

// Transition records one observed status change of a job.
// FromStatus is empty when the job first appeared.
type Transition struct {
	EventID    string    `json:"event_id" db:"event_id"`
	View       string    `json:"view" db:"view"`
	TaskID     string    `json:"task_id" db:"task_id"`
	Filename   string    `json:"filename" db:"filename"`
	FromStatus string    `json:"from_status" db:"from_status"`
	ToStatus   string    `json:"to_status" db:"to_status"`
	ObservedAt time.Time `json:"observed_at" db:"observed_at"`
}

// NewTransition stamps a new event id on a status change
func NewTransition(view string, j job.Job, from job.Status, observedAt time.Time) Transition {
	return Transition{
		EventID:    uuid.NewString(),
		View:       view,
		TaskID:     j.TaskID,
		Filename:   j.Filename,
		FromStatus: from.String(),
		ToStatus:   j.Status.String(),
		ObservedAt: observedAt.UTC(),
	}
}

// Appeared reports whether the event is a job's first sighting
func (t Transition) Appeared() bool {
	return t.FromStatus == ""
}

// Validate checks the fields a consumer relies on
func (t Transition) Validate() error {
	if _, err := uuid.Parse(t.EventID); err != nil {
		return fmt.Errorf("%w: event_id %q is not a UUID", ErrInvalidEvent, t.EventID)
	}
	if strings.TrimSpace(t.TaskID) == "" {
		return fmt.Errorf("%w: task_id is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(t.ToStatus) == "" {
		return fmt.Errorf("%w: to_status is required", ErrInvalidEvent)
	}
	if t.ObservedAt.IsZero() {
		return fmt.Errorf("%w: observed_at is required", ErrInvalidEvent)
	}
	return nil
}

// Encode serializes the event for publishing
func (t Transition) Encode() ([]byte, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return body, nil
}

// Decode parses and validates a published event
func Decode(body []byte) (*Transition, error) {
	var t Transition
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
