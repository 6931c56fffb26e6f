package handlers

import (
	"net/http"

	"github.com/architect/checklist-lab/internal/checklists/models"
	"github.com/architect/checklist-lab/internal/checklists/services"
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// ChecklistHandler exposes checklist CRUD
type ChecklistHandler struct {
	checklists *services.ChecklistService
}

func NewChecklistHandler(checklists *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

// ListChecklists returns every checklist with its ordered items
// GET /api/v1/checklists
func (h *ChecklistHandler) ListChecklists(c *gin.Context) {
	checklists, err := h.checklists.GetChecklists()
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, checklists)
}

// CreateChecklist creates a checklist with its items
// POST /api/v1/checklists
func (h *ChecklistHandler) CreateChecklist(c *gin.Context) {
	var req models.CreateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("title and items are required"))
		return
	}

	checklist, err := h.checklists.CreateChecklist(middleware.UserID(c), req)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, checklist)
}

// ToggleItem flips an item's completion state
// PATCH /api/v1/checklists/:checklistId/items/:itemId
func (h *ChecklistHandler) ToggleItem(c *gin.Context) {
	item, err := h.checklists.ToggleItem(
		c.Param("checklistId"),
		c.Param("itemId"),
		middleware.UserID(c))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ShareChecklist records a share of the checklist
// POST /api/v1/checklists/:checklistId/share
func (h *ChecklistHandler) ShareChecklist(c *gin.Context) {
	var req models.ShareChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.JSONErrorResponse(c, errors.BadRequest("share method is required"))
		return
	}

	checklist, err := h.checklists.ShareChecklist(
		c.Param("checklistId"),
		middleware.UserID(c),
		req.Method)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, checklist)
}
