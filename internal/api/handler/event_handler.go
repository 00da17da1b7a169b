package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luciusscala/hackmitmentra/internal/api/domain"
	"github.com/luciusscala/hackmitmentra/internal/api/dto"
	"github.com/luciusscala/hackmitmentra/internal/api/model"
	"github.com/luciusscala/hackmitmentra/internal/api/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// EventLister reads stored transitions
type EventLister interface {
	ListEvents(ctx context.Context, filter storage.EventFilter) ([]model.Event, error)
}

// ListEvents handles GET /api/v1/events
// Lists stored transitions with optional filtering and cursor pagination
func (h *EventHandler) ListEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrEventsDisabled.Error()})
		return
	}

	var req dto.ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}

	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeEventCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	events, err := h.events.ListEvents(c.Request.Context(), storage.EventFilter{
		TaskID:   req.TaskID,
		ToStatus: req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list events", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list events",
		})
		return
	}

	hasMore := len(events) > req.PageSize
	if hasMore {
		events = events[:req.PageSize]
	}

	resp := dto.ListEventsResponse{Events: make([]dto.EventDTO, len(events))}
	for i, e := range events {
		resp.Events[i] = dto.EventDTO{
			EventID:    e.EventID,
			View:       e.View,
			TaskID:     e.TaskID,
			Filename:   e.Filename,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ObservedAt: e.ObservedAt.UTC().Format(time.RFC3339),
		}
	}

	if hasMore {
		last := events[len(events)-1]
		resp.NextCursor = EncodeEventCursor(&storage.EventCursor{
			ObservedAt: last.ObservedAt,
			EventID:    last.EventID,
		})
	}

	c.JSON(http.StatusOK, resp)
}
