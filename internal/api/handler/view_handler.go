package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luciusscala/hackmitmentra/internal/api/domain"
	"github.com/luciusscala/hackmitmentra/internal/api/dto"
	"github.com/luciusscala/hackmitmentra/internal/view"
)

// Dashboard handles GET /api/v1/views/dashboard
func (h *ViewHandler) Dashboard(c *gin.Context) {
	src, ok := h.sources[ViewDashboard]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "dashboard view is not configured"})
		return
	}

	c.JSON(http.StatusOK, h.renderer.Dashboard(src.Name(), src.State()))
}

// Library handles GET /api/v1/views/library
// Supports q (filename search) and status (all, completed, processing, failed)
func (h *ViewHandler) Library(c *gin.Context) {
	src, ok := h.sources[ViewLibrary]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "library view is not configured"})
		return
	}

	var req dto.LibraryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	filter, err := view.ParseFilter(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.renderer.Library(src.Name(), src.State(), view.LibraryQuery{
		Search: req.Query,
		Filter: filter,
	}))
}

// Retry handles POST /api/v1/views/:view/retry
// Asks the view's poller for an immediate fetch
func (h *ViewHandler) Retry(c *gin.Context) {
	name := c.Param("view")

	src, ok := h.sources[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": domain.ErrUnknownView.Error(),
			"view":  name,
		})
		return
	}

	src.Refresh()
	h.logger.Info("Manual refresh requested", slog.String("view", name))

	c.JSON(http.StatusAccepted, dto.RetryResponse{
		View:   name,
		Status: "refresh_requested",
	})
}
