package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciusscala/hackmitmentra/internal/event"
	"github.com/luciusscala/hackmitmentra/internal/job"
	"github.com/luciusscala/hackmitmentra/internal/worker/domain"
)

type fakeStore struct {
	err      error
	stored   []*event.Transition
	deadline bool
}

func (s *fakeStore) InsertEvent(ctx context.Context, t *event.Transition) error {
	_, s.deadline = ctx.Deadline()
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, t)
	return nil
}

func newTestWorker(store EventStore, timeout time.Duration) *Worker {
	return NewWorker(&Config{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Storage:      store,
		Concurrency:  2,
		EventTimeout: timeout,
	})
}

func sampleEvent() *event.Transition {
	t := event.NewTransition("dashboard", job.Job{TaskID: "abc123", Status: job.StatusDone}, job.StatusMerging, time.Now())
	return &t
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(&Config{Logger: slog.Default()})

	assert.Equal(t, 1, w.concurrency)
	assert.Equal(t, 1, w.prefetchCount)
	assert.Contains(t, w.workerID, "event-worker-")
}

func TestShouldRequeue(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "retryable", err: domain.NewRetryableError(errors.New("connection reset")), want: true},
		{name: "wrapped retryable", err: fmt.Errorf("store: %w", domain.NewRetryableError(errors.New("timeout"))), want: true},
		{name: "invalid payload", err: fmt.Errorf("%w: bad json", domain.ErrInvalidPayload), want: false},
		{name: "unknown", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRequeue(tt.err))
		})
	}
}

func TestParseDelivery(t *testing.T) {
	body, err := sampleEvent().Encode()
	require.NoError(t, err)

	got, err := parseDelivery(body)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.TaskID)

	_, err = parseDelivery([]byte(`{"job_id":"x"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.False(t, shouldRequeue(err))
}

func TestProcessEvent(t *testing.T) {
	tests := []struct {
		name          string
		storeErr      error
		msg           *domain.EventMessage
		wantErr       bool
		wantRequeue   bool
		wantStoredLen int
	}{
		{name: "stored", msg: &domain.EventMessage{Event: sampleEvent()}, wantStoredLen: 1},
		{name: "duplicate is acked", storeErr: domain.ErrDuplicateEvent, msg: &domain.EventMessage{Event: sampleEvent()}},
		{name: "database error requeues", storeErr: errors.New("connection refused"), msg: &domain.EventMessage{Event: sampleEvent()}, wantErr: true, wantRequeue: true},
		{name: "missing event", msg: &domain.EventMessage{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{err: tt.storeErr}
			w := newTestWorker(store, time.Second)

			err := w.processEvent(context.Background(), tt.msg)

			if !tt.wantErr {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantRequeue, shouldRequeue(err))
			}
			assert.Len(t, store.stored, tt.wantStoredLen)
		})
	}
}

func TestProcessEvent_AppliesTimeout(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, 50*time.Millisecond)

	require.NoError(t, w.processEvent(context.Background(), &domain.EventMessage{Event: sampleEvent()}))
	assert.True(t, store.deadline)

	store = &fakeStore{}
	w = newTestWorker(store, 0)
	require.NoError(t, w.processEvent(context.Background(), &domain.EventMessage{Event: sampleEvent()}))
	assert.False(t, store.deadline)
}

func TestStop_IsIdempotent(t *testing.T) {
	w := newTestWorker(&fakeStore{}, 0)

	assert.NotPanics(t, func() {
		w.Stop()
		w.Stop()
	})
}
