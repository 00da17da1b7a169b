package feed

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/job"
	"resty.dev/v3"
)

const (
	listPath     = "/photos"
	maxErrorBody = 512
)

// Config holds media backend client configuration
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string
	Logger         *slog.Logger
}

// Client reads job state from the media backend
type Client struct {
	baseURL string
	http    *resty.Client
	logger  *slog.Logger
}

// NewClient creates a new Client
func NewClient(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		http.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.RequestTimeout > 0 {
		http.SetTimeout(cfg.RequestTimeout)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: baseURL,
		http:    http,
		logger:  logger,
	}
}

// ListJobs calls GET /photos and returns the job collection in server order.
// A missing "videos" field is treated as an empty collection.
func (c *Client) ListJobs(ctx context.Context) ([]job.Job, error) {
	var payload job.ListResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(listPath)
	if err != nil {
		return nil, &FetchError{Op: "list jobs", Err: err}
	}

	if resp.IsError() {
		return nil, &FetchError{
			Op:         "list jobs",
			StatusCode: resp.StatusCode(),
			Body:       truncate(resp.String(), maxErrorBody),
		}
	}

	c.logger.Debug("Fetched job list",
		slog.Int("count", len(payload.Videos)),
		slog.Int("status", resp.StatusCode()),
	)

	if payload.Videos == nil {
		return []job.Job{}, nil
	}
	return payload.Videos, nil
}

// DownloadURL returns the media URL for a job, used for both play and download
func (c *Client) DownloadURL(taskID string) (string, error) {
	if taskID == "" {
		return "", ErrEmptyTaskID
	}
	return c.baseURL + listPath + "/" + url.PathEscape(taskID) + "/download", nil
}

// BaseURL returns the configured backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections
func (c *Client) Close() error {
	return c.http.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
