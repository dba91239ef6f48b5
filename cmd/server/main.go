package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"carrental-backend/internal/advisor"
	grpcapi "carrental-backend/internal/api/grpc"
	httpapi "carrental-backend/internal/api/http"
	"carrental-backend/internal/checkout"
	"carrental-backend/internal/config"
	"carrental-backend/internal/events"
	"carrental-backend/internal/jobs"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/payment"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/repository/firestore"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/scheduler"
	"carrental-backend/internal/security"
	"carrental-backend/internal/service"
	"carrental-backend/internal/storage"
)

type store interface {
	repository.BookingRepository
	repository.ProfileRepository
}

type paymentGateway interface {
	checkout.IntentProvider
	checkout.PaymentConfirmer
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting car rental backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app *firebase.App
	if cfg.Store.Type == "firestore" || cfg.Auth.Provider == "firebase" || cfg.Storage.Type == "firebase" {
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	// Initialize Repositories
	var repo store
	switch cfg.Store.Type {
	case "firestore":
		client, err := app.Firestore(ctx)
		if err != nil {
			log.Fatalf("Failed to connect to Firestore: %v", err)
		}
		defer client.Close()
		repo = firestore.NewStore(client)
		logger.Info("Using Firestore store", "project", cfg.Firebase.ProjectID)
	default:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		pg := postgres.NewStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		repo = pg
		logger.Info("Database connection established")
	}

	// Initialize Security
	var verifier security.IdentityVerifier
	if cfg.Auth.Provider == "jwt" {
		verifier = security.NewJWTVerifier(security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute))
		logger.Warn("Using local JWT identity provider")
	} else {
		authClient, err := app.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		verifier = security.NewFirebaseVerifier(authClient)
	}
	admins := security.NewEmailAllowList(cfg.Auth.AdminEmails)

	// Initialize Storage Service
	var blobs storage.BlobStore
	var downloads storage.LocalFileReader
	switch cfg.Storage.Type {
	case "firebase":
		storageClient, err := app.Storage(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Storage: %v", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			log.Fatalf("Failed to open storage bucket: %v", err)
		}
		blobs = storage.NewFirebaseStorage(bucket, cfg.Firebase.StorageBucket)
		logger.Info("Using Firebase storage", "bucket", cfg.Firebase.StorageBucket)
	default:
		logger.Info("Using mock storage (local filesystem)", "upload_dir", cfg.Storage.UploadDir)
		mockStorage, err := storage.NewMockStorageService(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize mock storage: %v", err)
		}
		blobs = mockStorage
		downloads = mockStorage
	}

	// Initialize checkout session store
	var sessions checkout.Store
	if cfg.Session.Type == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		sessions = checkout.NewRedisStore(rdb, cfg.Session.TTL(), cfg.Session.BusyTTL())
		logger.Info("Using Redis checkout sessions", "addr", cfg.Redis.Addr)
	} else {
		sessions = checkout.NewMemoryStore(cfg.Session.TTL(), cfg.Session.BusyTTL())
	}

	var gateway paymentGateway
	if cfg.Stripe.Mock || cfg.Stripe.SecretKey == "" {
		logger.Warn("Using mock payment gateway")
		gateway = payment.NewMockGateway()
	} else {
		gateway = payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.ReturnURL)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("Publishing booking events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	var adv advisor.Advisor = advisor.Noop{}
	if cfg.Advisor.Enabled {
		gemini, err := advisor.NewGemini(ctx, cfg.Advisor.APIKey, cfg.Advisor.Model)
		if err != nil {
			logger.Error("Advisor disabled", "error", err)
		} else {
			adv = gemini
		}
	}

	// Initialize Email Service
	var emailSvc service.EmailService = service.LogEmailService{}
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	}

	// Initialize Services
	catalogSvc, err := service.NewCatalogService(cfg.Booking.CatalogFile, cfg.Booking.DeliveryFeeCents, adv)
	if err != nil {
		log.Fatalf("Failed to load vehicle catalog: %v", err)
	}
	accountSvc := service.NewAccountService(repo, repo, verifier, admins)
	adminSvc := service.NewAdminService(repo, emailSvc, publisher, adv)
	submitter := service.NewBookingSubmitter(blobs, repo, repo, emailSvc, publisher, cfg.Booking.NotificationEmails)
	policy := checkout.Policy{
		DeliveryFeeCents: cfg.Booking.DeliveryFeeCents,
		DownPaymentCents: cfg.Booking.DownPaymentCents,
		Currency:         cfg.Booking.Currency,
	}
	intents := service.NewCustomerLinkingIntents(gateway, repo)
	flow := checkout.NewFlow(sessions, catalogSvc, intents, gateway, submitter, policy)

	handler := httpapi.NewHandler(httpapi.Deps{
		Catalog:          catalogSvc,
		Accounts:         accountSvc,
		Admin:            adminSvc,
		Flow:             flow,
		Verifier:         verifier,
		Downloads:        downloads,
		Company:          cfg.Booking.Company,
		MaxDocumentBytes: cfg.Booking.MaxDocumentBytes(),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
	})
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up gRPC health server
	var healthServer *grpcapi.Server
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			log.Fatalf("Failed to listen: %v", err)
		}
		healthServer = grpcapi.NewServer(verifier, admins)
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	// In-process scheduler for the admin digest
	jobRunner := jobs.NewJobRunner(&jobs.Services{Email: emailSvc, Admin: adminSvc}, cfg)
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	cronScheduler.Start()

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if healthServer != nil {
		healthServer.SetServing(false)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if healthServer != nil {
		healthServer.Stop()
	}
	cronScheduler.Stop()
	logger.Info("Server stopped. Goodbye!")
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	return firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}, opts...)
}
