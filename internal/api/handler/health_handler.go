package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service liveness, view load state and database reachability
type HealthHandler struct {
	logger   *slog.Logger
	sources  map[string]Source
	database HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		logger:   deps.Logger,
		sources:  deps.Sources,
		database: deps.Database,
	}
}

// Health handles GET /health
// A failing feed only shows up per view; a database that is configured but down makes the service degraded.
func (h *HealthHandler) Health(c *gin.Context) {
	code := http.StatusOK
	body := gin.H{
		"status":  "healthy",
		"service": "dashboard-service",
	}

	views := gin.H{}
	for name, src := range h.sources {
		state := src.State()
		views[name] = gin.H{
			"loaded":  state.HasData,
			"failing": state.Err != nil,
		}
	}
	body["views"] = views

	if h.database != nil {
		if err := h.database.HealthCheck(c.Request.Context()); err != nil {
			h.logger.Warn("Database health check failed", slog.String("error", err.Error()))
			code = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		} else {
			body["database"] = "up"
		}
	}

	c.JSON(code, body)
}
