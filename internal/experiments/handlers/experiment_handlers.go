package handlers

import (
	"net/http"

	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/architect/checklist-lab/internal/experiments/models"
	"github.com/architect/checklist-lab/internal/experiments/services"
	"github.com/gin-gonic/gin"
)

// ExperimentHandler exposes variant lookup and flag management
type ExperimentHandler struct {
	experiments *services.ExperimentService
}

func NewExperimentHandler(experiments *services.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{experiments: experiments}
}

// GetVariant resolves the caller's variant
// GET /api/v1/experiments/:experimentId/variant
func (h *ExperimentHandler) GetVariant(c *gin.Context) {
	experimentID := c.Param("experimentId")
	userID := middleware.UserID(c)

	variant := h.experiments.GetVariant(experimentID, userID)

	c.JSON(http.StatusOK, models.VariantResponse{
		ExperimentID: experimentID,
		UserID:       userID,
		Variant:      variant,
	})
}

// GetFlag reports a feature flag's state
// GET /api/v1/flags/:flagName
func (h *ExperimentHandler) GetFlag(c *gin.Context) {
	flagName := c.Param("flagName")
	c.JSON(http.StatusOK, gin.H{
		"flag":    flagName,
		"enabled": h.experiments.IsFeatureEnabled(flagName),
	})
}

// ToggleFlag flips a feature flag
// POST /api/v1/admin/flags/:flagName/toggle
func (h *ExperimentHandler) ToggleFlag(c *gin.Context) {
	flagName := c.Param("flagName")
	c.JSON(http.StatusOK, gin.H{
		"flag":    flagName,
		"enabled": h.experiments.ToggleFlag(flagName),
	})
}
