package handlers

import (
	"net/http"
	"time"

	"github.com/architect/checklist-lab/internal/analytics/services"
	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the dashboard bundle
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetBundle computes the full metrics bundle
// GET /api/v1/analytics
func (h *AnalyticsHandler) GetBundle(c *gin.Context) {
	bundle, err := h.analytics.GetBundle(time.Now())
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}
