package view

import (
	"fmt"
	"strings"

	"github.com/luciusscala/hackmitmentra/internal/job"
	"github.com/luciusscala/hackmitmentra/internal/poller"
)

// Filter narrows the library by status
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterProcessing Filter = "processing"
	FilterFailed     Filter = "failed"
)

// ParseFilter validates a filter value; empty means all
func ParseFilter(value string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(value))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterProcessing, FilterFailed:
		return f, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", value)
	}
}

// Matches uses the same split as job.Summary: processing is everything not done
func (f Filter) Matches(j job.Job) bool {
	switch f {
	case FilterCompleted:
		return j.Status.IsDone()
	case FilterProcessing:
		return !j.Status.IsDone()
	case FilterFailed:
		return j.Status.Category() == job.CategoryFailed
	default:
		return true
	}
}

// LibraryQuery is the search and filter applied to the library
type LibraryQuery struct {
	Search string
	Filter Filter
}

func (q LibraryQuery) matches(j job.Job) bool {
	if !q.Filter.Matches(j) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.Filename), term)
}

// Library is the rendered library view
type Library struct {
	Meta
	Count      int         `json:"count"`
	CountLabel string      `json:"count_label"`
	Search     string      `json:"search,omitempty"`
	Filter     Filter      `json:"filter"`
	Summary    job.Summary `json:"summary"`
	TotalSize  string      `json:"total_size"`
	Videos     []Card      `json:"videos"`
	EmptyState *EmptyState `json:"empty_state,omitempty"`
}

// Library renders every job matching q, in server order
func (r *Renderer) Library(name string, s poller.State, q LibraryQuery) Library {
	if q.Filter == "" {
		q.Filter = FilterAll
	}

	l := Library{
		Meta:   newMeta(name, s, r.links),
		Search: q.Search,
		Filter: q.Filter,
		Videos: []Card{},
	}
	if !s.HasData {
		return l
	}

	l.Summary = job.Summarize(s.Jobs)
	l.TotalSize = l.Summary.TotalSize()
	l.Count = l.Summary.Total
	l.CountLabel = countLabel(l.Count)

	now := r.now()
	for _, j := range s.Jobs {
		if q.matches(j) {
			l.Videos = append(l.Videos, NewCard(j, r.links, now))
		}
	}

	if len(l.Videos) == 0 {
		msg := "Your video library is empty"
		if strings.TrimSpace(q.Search) != "" || q.Filter != FilterAll {
			msg = "Try adjusting your search terms"
		}
		l.EmptyState = &EmptyState{Title: "No videos found", Message: msg}
	}
	return l
}

func countLabel(n int) string {
	if n == 1 {
		return "1 video"
	}
	return fmt.Sprintf("%d videos", n)
}
