package view

import (
	"time"

	"github.com/luciusscala/hackmitmentra/internal/poller"
)

// ErrorAffordance is shown instead of content when nothing has loaded yet
type ErrorAffordance struct {
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	RetryURL string `json:"retry_url"`
}

// EmptyState is shown when a loaded collection has nothing to display
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Meta carries the poller status every view exposes.
//
// A failed refresh with data already loaded keeps rendering that data and
// only sets Stale; the error affordance is reserved for the case where
// there is nothing to show.
type Meta struct {
	View      string           `json:"view"`
	Loading   bool             `json:"loading"`
	Stale     bool             `json:"stale"`
	Error     *ErrorAffordance `json:"error,omitempty"`
	FetchedAt *time.Time       `json:"fetched_at,omitempty"`
}

func newMeta(name string, s poller.State, links Links) Meta {
	m := Meta{View: name, Loading: s.Loading}

	if s.HasData {
		fetched := s.FetchedAt
		m.FetchedAt = &fetched
	}

	if s.Err != nil {
		if s.HasData {
			m.Stale = true
		} else {
			m.Error = &ErrorAffordance{
				Message:  "Could not load jobs",
				Detail:   s.Err.Error(),
				RetryURL: links.Retry(name),
			}
		}
	}
	return m
}
