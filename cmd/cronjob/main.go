package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"carrental-backend/internal/advisor"
	"carrental-backend/internal/config"
	"carrental-backend/internal/events"
	"carrental-backend/internal/jobs"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/repository/firestore"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/scheduler"
	"carrental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'pending-digest', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting car rental cronjob runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Repositories
	var bookings repository.BookingRepository
	if cfg.Store.Type == "firestore" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, credentials(cfg)...)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			log.Fatalf("Failed to connect to Firestore: %v", err)
		}
		defer client.Close()
		bookings = firestore.NewBookingRepository(client)
	} else {
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		bookings = postgres.NewBookingRepository(db)
		logger.Info("Database connection established")
	}

	// Initialize Services
	var emailSvc service.EmailService = service.LogEmailService{}
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}
	adminSvc := service.NewAdminService(bookings, emailSvc, events.NoopPublisher{}, advisor.Noop{})

	jobRunner := jobs.NewJobRunner(&jobs.Services{Email: emailSvc, Admin: adminSvc}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

func credentials(cfg *config.Config) []option.ClientOption {
	if cfg.Firebase.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.Firebase.CredentialsFile)}
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "pending-digest":
		jobRunner.SendPendingDigest()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - pending-digest\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
