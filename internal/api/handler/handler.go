package handler

import (
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/luciusscala/hackmitmentra/internal/poller"
	"github.com/luciusscala/hackmitmentra/internal/view"
)

// View names served by the API
const (
	ViewDashboard = "dashboard"
	ViewLibrary   = "library"
)

// Source is a view's poller as seen by the handlers
type Source interface {
	Name() string
	State() poller.State
	Refresh()
}

// Linker resolves the upstream download URL of a job
type Linker interface {
	DownloadURL(taskID string) (string, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Sources  map[string]Source
	Renderer *view.Renderer
	Linker   Linker
	Events   EventLister   // nil when the database is disabled
	Database HealthChecker // nil when the database is disabled

	// RedirectCacheTTL is how long a resolved media URL is reused
	RedirectCacheTTL time.Duration
}

// DefaultRedirectCacheTTL is used when no redirect cache TTL is configured
const DefaultRedirectCacheTTL = 10 * time.Minute

// ViewHandler serves the rendered dashboard and library
type ViewHandler struct {
	logger   *slog.Logger
	sources  map[string]Source
	renderer *view.Renderer
}

// NewViewHandler creates a new ViewHandler instance
func NewViewHandler(deps *Dependencies) *ViewHandler {
	return &ViewHandler{
		logger:   deps.Logger,
		sources:  deps.Sources,
		renderer: deps.Renderer,
	}
}

// JobHandler resolves play and download actions
type JobHandler struct {
	logger    *slog.Logger
	sources   map[string]Source
	linker    Linker
	redirects *cache.Cache
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	ttl := deps.RedirectCacheTTL
	if ttl <= 0 {
		ttl = DefaultRedirectCacheTTL
	}

	return &JobHandler{
		logger:    deps.Logger,
		sources:   deps.Sources,
		linker:    deps.Linker,
		redirects: cache.New(ttl, 2*ttl),
	}
}

// EventHandler serves the stored transition history
type EventHandler struct {
	logger *slog.Logger
	events EventLister
}

// NewEventHandler creates a new EventHandler instance
func NewEventHandler(deps *Dependencies) *EventHandler {
	return &EventHandler{
		logger: deps.Logger,
		events: deps.Events,
	}
}
