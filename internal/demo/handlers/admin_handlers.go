package handlers

import (
	"net/http"
	"time"

	checklistservices "github.com/architect/checklist-lab/internal/checklists/services"
	"github.com/architect/checklist-lab/internal/common/errors"
	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/architect/checklist-lab/internal/demo"
	experimentservices "github.com/architect/checklist-lab/internal/experiments/services"
	feedbackservices "github.com/architect/checklist-lab/internal/feedback/services"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/gin-gonic/gin"
)

// Simulation runs triggered over HTTP are capped so a bad request cannot
// tie up the server for long.
const maxSimulationDuration = 5 * time.Minute

// AdminHandler exposes the demo data generators over HTTP.
type AdminHandler struct {
	seeder       *demo.Seeder
	tracking     *trackingservices.TrackingService
	checklists   *checklistservices.ChecklistService
	feedback     *feedbackservices.FeedbackService
	experiments  *experimentservices.ExperimentService
	experimentID string
}

func NewAdminHandler(
	seeder *demo.Seeder,
	tracking *trackingservices.TrackingService,
	checklists *checklistservices.ChecklistService,
	feedback *feedbackservices.FeedbackService,
	experiments *experimentservices.ExperimentService,
	experimentID string,
) *AdminHandler {
	return &AdminHandler{
		seeder:       seeder,
		tracking:     tracking,
		checklists:   checklists,
		feedback:     feedback,
		experiments:  experiments,
		experimentID: experimentID,
	}
}

// Seed wipes and repopulates the store with sample data
// POST /api/v1/admin/seed
func (h *AdminHandler) Seed(c *gin.Context) {
	stats, err := h.seeder.Run()
	if err != nil {
		middleware.JSONErrorResponse(c, errors.Internal("seeding failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

type simulateRequest struct {
	DurationSeconds int `json:"duration_seconds"`
	Users           int `json:"users"`
}

// Simulate runs synthetic traffic for a bounded duration
// POST /api/v1/admin/simulate
func (h *AdminHandler) Simulate(c *gin.Context) {
	var req simulateRequest
	// Body is optional; defaults cover the empty case.
	_ = c.ShouldBindJSON(&req)

	opts := demo.DefaultSimulatorOptions(h.experimentID)
	if req.DurationSeconds > 0 {
		opts.Duration = time.Duration(req.DurationSeconds) * time.Second
	}
	if opts.Duration > maxSimulationDuration {
		opts.Duration = maxSimulationDuration
	}
	if req.Users > 0 {
		opts.Users = req.Users
	}

	simulator := demo.NewSimulator(h.tracking, h.checklists, h.feedback, h.experiments, opts)
	events, err := simulator.Run(c.Request.Context())
	if err != nil {
		middleware.JSONErrorResponse(c, errors.Internal("simulation failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"events_generated": events,
		"duration_seconds": int(opts.Duration.Seconds()),
		"users":            opts.Users,
	})
}
