package handlers

import (
	"net/http"

	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/architect/checklist-lab/internal/feedback/models"
	"github.com/architect/checklist-lab/internal/feedback/services"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler exposes feedback submission and listing
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// CreateFeedback stores one submission
// POST /api/v1/feedback
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req models.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("type and content are required"))
		return
	}

	feedback, err := h.feedback.CreateFeedback(middleware.UserID(c), req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

// ListFeedback returns submissions, newest first
// GET /api/v1/feedback
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	feedback, err := h.feedback.GetFeedback()
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}
