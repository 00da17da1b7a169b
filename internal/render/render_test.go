package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/luciusscala/hackmitmentra/internal/job"
	"github.com/luciusscala/hackmitmentra/internal/poller"
	"github.com/luciusscala/hackmitmentra/internal/view"
)

func renderer() *view.Renderer {
	return view.NewRenderer(view.RouteLinks{}, 3)
}

func loaded(jobs ...job.Job) poller.State {
	if jobs == nil {
		jobs = []job.Job{}
	}
	return poller.State{Jobs: jobs, HasData: true, FetchedAt: time.Now(), Seq: 1}
}

func TestDashboard(t *testing.T) {
	state := loaded(
		job.Job{TaskID: "abc123", Filename: "intro.mp4", Status: job.StatusDone, FileSizeMB: 12.3, CreatedAt: job.NewTimestamp(time.Now())},
		job.Job{TaskID: "def456", Filename: "broken.mp4", Status: job.StatusError, CreatedAt: job.NewTimestamp(time.Now())},
	)

	var out bytes.Buffer
	Dashboard(&out, renderer().Dashboard("dashboard", state))

	text := out.String()
	assert.Contains(t, text, "Videos Generated:")
	assert.Contains(t, text, "12.3 MB")
	assert.Contains(t, text, "Failed:")
	assert.Contains(t, text, "[done]")
	assert.Contains(t, text, "Play Download")
	assert.Contains(t, text, "(Processing...)")
}

func TestDashboard_States(t *testing.T) {
	stale := loaded(job.Job{TaskID: "a", Filename: "a.mp4", Status: job.StatusDone})
	stale.Err = errors.New("status 502")

	tests := []struct {
		name    string
		state   poller.State
		want    string
		notWant string
	}{
		{name: "loading", state: poller.State{Loading: true}, want: "loading...", notWant: "Dashboard"},
		{name: "first load failure", state: poller.State{Err: errors.New("refused")}, want: "press r to retry", notWant: "Dashboard"},
		{name: "empty", state: loaded(), want: "No videos yet"},
		{name: "stale", state: stale, want: "(stale: last updated", notWant: "error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			Dashboard(&out, renderer().Dashboard("dashboard", tt.state))

			assert.Contains(t, out.String(), tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, out.String(), tt.notWant)
			}
		})
	}
}

func TestLibrary(t *testing.T) {
	state := loaded(job.Job{TaskID: "a", Filename: "lecture.mp4", Status: job.StatusMerging})

	var out bytes.Buffer
	Library(&out, renderer().Library("library", state, view.LibraryQuery{Search: "zzz", Filter: view.FilterProcessing}))

	text := out.String()
	assert.Contains(t, text, "Library (1 video) status=processing q=\"zzz\"")
	assert.Contains(t, text, "No videos found. Try adjusting your search terms")
}

func TestError(t *testing.T) {
	var out bytes.Buffer
	Error(&out, nil)
	assert.Empty(t, out.String())

	Error(&out, errors.New("boom"))
	assert.Equal(t, "error: boom\n", out.String())
}
