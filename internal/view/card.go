package view

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/job"
)

// Action kinds
const (
	ActionPlay       = "play"
	ActionDownload   = "download"
	ActionProcessing = "processing"
)

// Links builds the URLs a rendered view points at
type Links interface {
	Play(taskID string) string
	Download(taskID string) string
	Retry(view string) string
}

// Action is a button on a job card
type Action struct {
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	URL     string `json:"url,omitempty"`
	Enabled bool   `json:"enabled"`
}

// Card is one rendered job
type Card struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Category  string    `json:"category"`
	Badge     string    `json:"badge"`
	SizeMB    float64   `json:"size_mb"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Age       string    `json:"age"`
	Actions   []Action  `json:"actions"`
}

// NewCard renders a job. Play and download are only offered once the job is done.
func NewCard(j job.Job, links Links, now time.Time) Card {
	return Card{
		TaskID:    j.TaskID,
		Title:     DisplayTitle(j),
		Filename:  j.Filename,
		Status:    j.Status.String(),
		Category:  string(j.Status.Category()),
		Badge:     j.Status.BadgeColor(),
		SizeMB:    j.FileSizeMB,
		Size:      job.FormatSize(j.FileSizeMB),
		CreatedAt: j.CreatedAt.Time,
		Age:       FormatAge(now, j.CreatedAt.Time),
		Actions:   actionsFor(j, links),
	}
}

func actionsFor(j job.Job, links Links) []Action {
	if !j.Status.IsDone() {
		return []Action{{Kind: ActionProcessing, Label: "Processing...", Enabled: false}}
	}
	return []Action{
		{Kind: ActionPlay, Label: "Play", URL: links.Play(j.TaskID), Enabled: true},
		{Kind: ActionDownload, Label: "Download", URL: links.Download(j.TaskID), Enabled: true},
	}
}

// DisplayTitle is the filename without its extension, or the task id
func DisplayTitle(j job.Job) string {
	name := strings.TrimSpace(j.Filename)
	if name == "" {
		return j.TaskID
	}
	if ext := path.Ext(name); ext != "" && len(ext) < len(name) {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// FormatAge renders how long ago t was, e.g. "5 min ago" or "2 days ago"
func FormatAge(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return plural(int(d/(7*24*time.Hour)), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
