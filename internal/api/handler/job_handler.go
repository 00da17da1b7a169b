package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/luciusscala/hackmitmentra/internal/api/domain"
	"github.com/luciusscala/hackmitmentra/internal/job"
)

// lookupOrder is the order sources are searched for a job
var lookupOrder = []string{ViewDashboard, ViewLibrary}

// Play handles GET /api/v1/jobs/:task_id/play
func (h *JobHandler) Play(c *gin.Context) {
	h.redirect(c, "play")
}

// Download handles GET /api/v1/jobs/:task_id/download
func (h *JobHandler) Download(c *gin.Context) {
	h.redirect(c, "download")
}

// Both actions resolve to the same upstream media URL. Done is terminal,
// so a resolved URL is cached and served without another lookup.
func (h *JobHandler) redirect(c *gin.Context, action string) {
	taskID := c.Param("task_id")

	if cached, found := h.redirects.Get(taskID); found {
		h.logger.Debug("Redirect cache hit",
			slog.String("task_id", taskID),
			slog.String("action", action),
		)
		c.Redirect(http.StatusFound, cached.(string))
		return
	}

	j, err := h.findJob(taskID)
	if err == nil && !j.Status.IsDone() {
		err = domain.ErrJobNotReady
	}

	switch {
	case errors.Is(err, domain.ErrNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "task_id": taskID})
		return
	case errors.Is(err, domain.ErrJobNotReady):
		c.JSON(http.StatusConflict, gin.H{
			"error":   err.Error(),
			"task_id": taskID,
			"status":  j.Status.String(),
		})
		return
	}

	target, err := h.linker.DownloadURL(taskID)
	if err != nil {
		h.logger.Error("Failed to build download URL",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.redirects.Set(taskID, target, cache.DefaultExpiration)

	h.logger.Debug("Redirecting to media",
		slog.String("task_id", taskID),
		slog.String("action", action),
	)
	c.Redirect(http.StatusFound, target)
}

// findJob searches the last successful collection of every source
func (h *JobHandler) findJob(taskID string) (job.Job, error) {
	loaded := false
	for _, name := range lookupOrder {
		src, ok := h.sources[name]
		if !ok {
			continue
		}
		state := src.State()
		if !state.HasData {
			continue
		}
		loaded = true
		for _, j := range state.Jobs {
			if j.TaskID == taskID {
				return j, nil
			}
		}
	}

	if !loaded {
		return job.Job{}, domain.ErrNotLoaded
	}
	return job.Job{}, domain.ErrJobNotFound
}
