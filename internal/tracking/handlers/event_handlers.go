package handlers

import (
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/architect/checklist-lab/internal/tracking/models"
	"github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/gin-gonic/gin"
)

// EventHandler exposes event ingestion
type EventHandler struct {
	tracking *services.TrackingService
}

func NewEventHandler(tracking *services.TrackingService) *EventHandler {
	return &EventHandler{tracking: tracking}
}

// TrackEvent ingests one event
// POST /api/v1/events
func (h *EventHandler) TrackEvent(c *gin.Context) {
	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("invalid event payload"))
		return
	}

	if req.UserID == "" {
		req.UserID = middleware.UserID(c)
	}

	event, err := h.tracking.Track(req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(201, gin.H{
		"success": true,
		"event":   event,
	})
}
