package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciusscala/hackmitmentra/internal/view"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		env          string
		wantErr      string
		wantBase     string
		wantInterval time.Duration
		wantFilter   view.Filter
	}{
		{name: "defaults", wantBase: "http://localhost:8000", wantInterval: 5 * time.Second, wantFilter: view.FilterAll},
		{name: "library default interval", args: []string{"--view", "library"}, wantBase: "http://localhost:8000", wantInterval: 10 * time.Second, wantFilter: view.FilterAll},
		{name: "env base url", env: "http://media:9000", wantBase: "http://media:9000", wantInterval: 5 * time.Second, wantFilter: view.FilterAll},
		{name: "flag beats env", env: "http://media:9000", args: []string{"--base-url", "https://x.example"}, wantBase: "https://x.example", wantInterval: 5 * time.Second, wantFilter: view.FilterAll},
		{name: "explicit interval and filter", args: []string{"--interval", "2s", "--status", "failed"}, wantBase: "http://localhost:8000", wantInterval: 2 * time.Second, wantFilter: view.FilterFailed},
		{name: "unknown view", args: []string{"--view", "settings"}, wantErr: "unknown view"},
		{name: "bad filter", args: []string{"--status", "queued"}, wantErr: "unknown status filter"},
		{name: "bad base url", args: []string{"--base-url", "not a url"}, wantErr: "invalid feed base_url"},
		{name: "negative interval", args: []string{"--interval", "-1s"}, wantErr: "interval must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envBaseURL, tt.env)

			opts, err := parseArgs(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, opts.BaseURL)
			assert.Equal(t, tt.wantInterval, opts.Interval)
			assert.Equal(t, tt.wantFilter, opts.Filter)
		})
	}
}

// parseArgs runs the command with exec replaced by a capture of the options
func parseArgs(args []string) (options, error) {
	var got options
	cmd := newRootCommand(func(_ context.Context, opts options) error {
		got = opts
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return got, err
}

func newBackend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Once(t *testing.T) {
	srv := newBackend(t, http.StatusOK, `{"videos":[{"task_id":"abc123","filename":"intro.mp4","status":"done","file_size_mb":12.3,"created_at":"2025-09-13T12:00:00"}]}`)

	opts, err := parseArgs([]string{"--base-url", srv.URL, "--once"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, strings.NewReader(""), &out))

	assert.Contains(t, out.String(), "12.3 MB")
	assert.Contains(t, out.String(), "[done]")
}

func TestRun_OnceFailsWithoutData(t *testing.T) {
	srv := newBackend(t, http.StatusInternalServerError, `{"detail":"boom"}`)

	opts, err := parseArgs([]string{"--base-url", srv.URL, "--once", "--view", "library"})
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(context.Background(), opts, strings.NewReader(""), &out)

	require.Error(t, err)
	assert.Contains(t, out.String(), "press r to retry")
}

func TestRun_WatchStopsOnCancel(t *testing.T) {
	srv := newBackend(t, http.StatusOK, `{"videos":[]}`)

	opts, err := parseArgs([]string{"--base-url", srv.URL, "--interval", "20ms"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, opts, strings.NewReader("r\n"), &out))

	assert.GreaterOrEqual(t, strings.Count(out.String(), "== "), 2)
	assert.Contains(t, out.String(), "No videos yet")
}
