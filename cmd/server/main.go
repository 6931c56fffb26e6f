package main

import (
	"fmt"
	"log"

	analyticshandlers "github.com/architect/checklist-lab/internal/analytics/handlers"
	analyticsrepo "github.com/architect/checklist-lab/internal/analytics/repository"
	analyticsservices "github.com/architect/checklist-lab/internal/analytics/services"
	checklisthandlers "github.com/architect/checklist-lab/internal/checklists/handlers"
	checklistmodels "github.com/architect/checklist-lab/internal/checklists/models"
	checklistrepo "github.com/architect/checklist-lab/internal/checklists/repository"
	checklistservices "github.com/architect/checklist-lab/internal/checklists/services"
	"github.com/architect/checklist-lab/internal/common/database"
	commonhandlers "github.com/architect/checklist-lab/internal/common/handlers"
	"github.com/architect/checklist-lab/internal/common/health"
	"github.com/architect/checklist-lab/internal/common/middleware"
	"github.com/architect/checklist-lab/internal/demo"
	adminhandlers "github.com/architect/checklist-lab/internal/demo/handlers"
	experimenthandlers "github.com/architect/checklist-lab/internal/experiments/handlers"
	experimentmodels "github.com/architect/checklist-lab/internal/experiments/models"
	experimentrepo "github.com/architect/checklist-lab/internal/experiments/repository"
	experimentservices "github.com/architect/checklist-lab/internal/experiments/services"
	feedbackhandlers "github.com/architect/checklist-lab/internal/feedback/handlers"
	feedbackmodels "github.com/architect/checklist-lab/internal/feedback/models"
	feedbackrepo "github.com/architect/checklist-lab/internal/feedback/repository"
	feedbackservices "github.com/architect/checklist-lab/internal/feedback/services"
	trackinghandlers "github.com/architect/checklist-lab/internal/tracking/handlers"
	trackingmodels "github.com/architect/checklist-lab/internal/tracking/models"
	trackingrepo "github.com/architect/checklist-lab/internal/tracking/repository"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/architect/checklist-lab/internal/tracking/sink"
	"github.com/architect/checklist-lab/pkg/config"
	"github.com/architect/checklist-lab/pkg/logger"
	"github.com/architect/checklist-lab/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Open database (SQLite for development, PostgreSQL for production)
	db, err := database.Open(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db,
		&database.User{},
		&trackingmodels.Event{},
		&experimentmodels.ExperimentAssignment{},
		&checklistmodels.Checklist{},
		&checklistmodels.ChecklistItem{},
		&feedbackmodels.Feedback{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// External sink is optional; without a key events stay local only.
	var eventSink sink.EventSink = sink.NopSink{}
	if cfg.Analytics.SinkAPIKey != "" {
		eventSink = sink.NewPostHogSink(cfg.Analytics.SinkAPIKey, cfg.Analytics.SinkHost)
		logger.Info("external event sink enabled", zap.String("host", cfg.Analytics.SinkHost))
	}

	// Repositories
	eventRepo := trackingrepo.NewEventRepository(db)
	assignmentRepo := experimentrepo.NewAssignmentRepository(db)
	analyticsRepo := analyticsrepo.NewAnalyticsRepository(db)
	checklistRepo := checklistrepo.NewChecklistRepository(db)
	feedbackRepo := feedbackrepo.NewFeedbackRepository(db)

	// Services
	trackingService := trackingservices.NewTrackingService(eventRepo, eventSink)
	experimentService := experimentservices.NewExperimentService(assignmentRepo)
	analyticsService := analyticsservices.NewAnalyticsService(
		analyticsRepo, assignmentRepo, cfg.Experiment.ID, cfg.Analytics.WindowDays)
	checklistService := checklistservices.NewChecklistService(
		checklistRepo, trackingService, experimentService, cfg.Experiment.ID)
	feedbackService := feedbackservices.NewFeedbackService(feedbackRepo, trackingService)
	seeder := demo.NewSeeder(db)

	// Handlers
	eventHandler := trackinghandlers.NewEventHandler(trackingService)
	experimentHandler := experimenthandlers.NewExperimentHandler(experimentService)
	analyticsHandler := analyticshandlers.NewAnalyticsHandler(analyticsService)
	checklistHandler := checklisthandlers.NewChecklistHandler(checklistService)
	feedbackHandler := feedbackhandlers.NewFeedbackHandler(feedbackService)
	adminHandler := adminhandlers.NewAdminHandler(
		seeder, trackingService, checklistService, feedbackService,
		experimentService, cfg.Experiment.ID)

	// Create Gin engine
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Identity())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())
	router.Use(metrics.Middleware())

	// Health check endpoints
	healthChecker := health.NewHealthChecker(db, version)
	healthHandler := commonhandlers.NewHealthHandler(healthChecker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/readiness", healthHandler.Readiness)
	router.GET("/health/liveness", healthHandler.Liveness)
	router.GET("/health/metrics", healthHandler.Metrics)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/events", eventHandler.TrackEvent)

		v1.GET("/experiments/:experimentId/variant", experimentHandler.GetVariant)
		v1.GET("/flags/:flagName", experimentHandler.GetFlag)

		v1.GET("/analytics", analyticsHandler.GetBundle)

		checklistGroup := v1.Group("/checklists")
		{
			checklistGroup.GET("", checklistHandler.ListChecklists)
			checklistGroup.POST("", checklistHandler.CreateChecklist)
			checklistGroup.PATCH("/:checklistId/items/:itemId", checklistHandler.ToggleItem)
			checklistGroup.POST("/:checklistId/share", checklistHandler.ShareChecklist)
		}

		v1.POST("/feedback", feedbackHandler.CreateFeedback)
		v1.GET("/feedback", feedbackHandler.ListFeedback)

		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/seed", adminHandler.Seed)
			adminGroup.POST("/simulate", adminHandler.Simulate)
			adminGroup.POST("/flags/:flagName/toggle", experimentHandler.ToggleFlag)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server", zap.String("address", address), zap.String("env", cfg.Server.Env))

	if err := router.Run(address); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
