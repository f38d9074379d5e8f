package main

import (
	"log"

	"github.com/troopvault/tv-backend/internal/aws"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/database"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	emailSvc, err := aws.NewSESService(cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	worker := queue.NewWorker(&cfg.Redis, emailSvc, db.Store())

	log.Println("Starting queue worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}

	select {}
}
