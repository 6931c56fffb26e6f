package main

import (
	"flag"
	"log"

	"github.com/architect/checklist-lab/internal/common/database"
	"github.com/architect/checklist-lab/internal/demo"
	"github.com/architect/checklist-lab/pkg/config"
)

func main() {
	dbType := flag.String("db-type", "", "Database type: sqlite or postgres (defaults to env config)")
	dsn := flag.String("dsn", "", "Database DSN (defaults to env config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbType != "" {
		cfg.Database.Type = *dbType
	}
	if *dsn != "" {
		cfg.Database.DSN = *dsn
	}

	db, err := database.Open(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, demo.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("🌱 Starting database seeding...")
	log.Println("This will create realistic data for the last 30 days")

	stats, err := demo.NewSeeder(db).Run()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("🎉 Seeding completed successfully!")
	log.Printf("   Users:      %d", stats.Users)
	log.Printf("   Checklists: %d", stats.Checklists)
	log.Printf("   Events:     %d", stats.Events)
	log.Printf("   Feedback:   %d", stats.Feedback)
}
