package view

import (
	"sort"
	"strconv"

	"github.com/luciusscala/hackmitmentra/internal/job"
	"github.com/luciusscala/hackmitmentra/internal/poller"
)

// Stat is one dashboard tile
type Stat struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Dashboard is the rendered dashboard view
type Dashboard struct {
	Meta
	Summary    job.Summary `json:"summary"`
	TotalSize  string      `json:"total_size"`
	Stats      []Stat      `json:"stats"`
	Recent     []Card      `json:"recent"`
	EmptyState *EmptyState `json:"empty_state,omitempty"`
}

// Dashboard renders stats and the most recent jobs. Aggregates are
// recomputed from the state on every call.
func (r *Renderer) Dashboard(name string, s poller.State) Dashboard {
	d := Dashboard{
		Meta:   newMeta(name, s, r.links),
		Stats:  []Stat{},
		Recent: []Card{},
	}
	if !s.HasData {
		return d
	}

	d.Summary = job.Summarize(s.Jobs)
	d.TotalSize = d.Summary.TotalSize()
	d.Stats = []Stat{
		{Key: "generated", Title: "Videos Generated", Value: strconv.Itoa(d.Summary.Completed)},
		{Key: "processing", Title: "Processing", Value: strconv.Itoa(d.Summary.Processing)},
		{Key: "total", Title: "Total Jobs", Value: strconv.Itoa(d.Summary.Total)},
		{Key: "size", Title: "Total Size", Value: d.TotalSize},
	}

	if len(s.Jobs) == 0 {
		d.EmptyState = &EmptyState{
			Title:   "No videos yet",
			Message: "Videos show up here once processing starts",
		}
		return d
	}

	now := r.now()
	for _, j := range mostRecent(s.Jobs, r.recentLimit) {
		d.Recent = append(d.Recent, NewCard(j, r.links, now))
	}
	return d
}

// mostRecent returns up to n jobs, newest first, without reordering the input
func mostRecent(jobs []job.Job, n int) []job.Job {
	sorted := make([]job.Job, len(jobs))
	copy(sorted, jobs)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].CreatedAt.After(sorted[b].CreatedAt.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
