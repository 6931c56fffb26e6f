package main

import (
	"context"
	"flag"
	"log"
	"time"

	checklistrepo "github.com/architect/checklist-lab/internal/checklists/repository"
	checklistservices "github.com/architect/checklist-lab/internal/checklists/services"
	"github.com/architect/checklist-lab/internal/common/database"
	"github.com/architect/checklist-lab/internal/demo"
	experimentrepo "github.com/architect/checklist-lab/internal/experiments/repository"
	experimentservices "github.com/architect/checklist-lab/internal/experiments/services"
	feedbackrepo "github.com/architect/checklist-lab/internal/feedback/repository"
	feedbackservices "github.com/architect/checklist-lab/internal/feedback/services"
	trackingrepo "github.com/architect/checklist-lab/internal/tracking/repository"
	trackingservices "github.com/architect/checklist-lab/internal/tracking/services"
	"github.com/architect/checklist-lab/internal/tracking/sink"
	"github.com/architect/checklist-lab/pkg/config"
	"github.com/architect/checklist-lab/pkg/logger"
)

func main() {
	duration := flag.Duration("duration", 2*time.Minute, "How long to run the simulation")
	users := flag.Int("users", 15, "Number of synthetic users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, demo.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	trackingService := trackingservices.NewTrackingService(
		trackingrepo.NewEventRepository(db), sink.NopSink{})
	experimentService := experimentservices.NewExperimentService(
		experimentrepo.NewAssignmentRepository(db))
	checklistService := checklistservices.NewChecklistService(
		checklistrepo.NewChecklistRepository(db), trackingService,
		experimentService, cfg.Experiment.ID)
	feedbackService := feedbackservices.NewFeedbackService(
		feedbackrepo.NewFeedbackRepository(db), trackingService)

	opts := demo.SimulatorOptions{
		Duration:     *duration,
		Users:        *users,
		ExperimentID: cfg.Experiment.ID,
	}

	log.Println("🤖 Starting traffic simulation...")
	log.Printf("   Duration: %s", opts.Duration)
	log.Printf("   Users:    %d", opts.Users)

	simulator := demo.NewSimulator(
		trackingService, checklistService, feedbackService, experimentService, opts)
	events, err := simulator.Run(context.Background())
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	log.Println("🎉 Simulation completed!")
	log.Printf("   Events generated: %d", events)
	log.Println("💡 GET /api/v1/analytics to see the updated metrics")
}
