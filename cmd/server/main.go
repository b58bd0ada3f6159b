package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexapay/nexapay-backend/config"
	"github.com/nexapay/nexapay-backend/internal/app/controller"
	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/internal/app/service"
	"github.com/nexapay/nexapay-backend/internal/db"
	"github.com/nexapay/nexapay-backend/internal/lock"
	"github.com/nexapay/nexapay-backend/internal/middleware"
	"github.com/nexapay/nexapay-backend/internal/provider"
	"github.com/nexapay/nexapay-backend/internal/provider/sumsub"
	"github.com/nexapay/nexapay-backend/internal/router"
	"github.com/nexapay/nexapay-backend/internal/scheduler"
	"github.com/nexapay/nexapay-backend/internal/storage"
	"github.com/nexapay/nexapay-backend/internal/websocket"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"github.com/nexapay/nexapay-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting NEXAPAY Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the distributed per-subject lock; without it the service
	// still runs single-instance on an in-process lock.
	var locker lock.Locker
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, falling back to in-process locking", map[string]interface{}{
			"error": err.Error(),
		})
		locker = lock.NewMemoryLocker()
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		locker = lock.NewRedisLocker(redis.GetClient(), 0)
	}

	// Initialize verification providers
	sumsubClient, err := sumsub.NewClient(sumsub.Config{
		AppToken:  cfg.Sumsub.AppToken,
		SecretKey: cfg.Sumsub.SecretKey,
		BaseURL:   cfg.Sumsub.BaseURL,
		Timeout:   cfg.Sumsub.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Sumsub client", err)
	}
	registry := provider.NewRegistry(cfg.Sumsub.CountryProviders)
	registry.Register(sumsubClient)

	// Initialize repositories
	verificationRepo := repository.NewVerificationRepository(db.GetDB())
	auditRepo := repository.NewAuditRepository(db.GetDB())
	tierRepo := repository.NewTierRepository(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())
	userTierRepo := repository.NewUserTierRepository(db.GetDB())
	walletRepo := repository.NewWalletRepository(db.GetDB())
	notificationRepo := repository.NewNotificationRepository(db.GetDB())

	// Websocket hub for live status events
	hub := websocket.NewHub()
	go hub.Run()

	// Document archive
	archive := storage.NewS3Storage(cfg.S3)

	// Initialize services
	reconciler := service.NewReconciliationService(verificationRepo, auditRepo, userTierRepo, db.GetDB())
	walletService := service.NewWalletService(walletRepo)
	notificationService := service.NewNotificationService(notificationRepo, service.LogMailer{})
	kycService := service.NewKYCService(
		registry,
		reconciler,
		verificationRepo,
		auditRepo,
		tierRepo,
		userRepo,
		userTierRepo,
		archive,
	)
	reportService := service.NewReportService(verificationRepo, auditRepo)
	webhookService := service.NewWebhookService(
		&cfg.Sumsub,
		sumsubClient,
		locker,
		reconciler,
		verificationRepo,
		auditRepo,
		tierRepo,
		userRepo,
		walletService,
		service.LogAccountProvisioner{},
		service.LogPointsService{},
		service.LogDepositMonitor{},
		notificationService,
		hub,
		db.GetDB(),
	)

	// Initialize controllers
	kycController := controller.NewKYCController(kycService)
	webhookController := controller.NewWebhookController(webhookService)
	notificationController := controller.NewNotificationController(notificationService, hub)
	reportController := controller.NewReportController(reportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	webhookAuthMiddleware := middleware.NewWebhookAuthMiddleware(cfg.Sumsub.WebhookSecret)

	// Start AML recheck scheduler
	amlScheduler := scheduler.NewAMLScheduler(verificationRepo, registry)
	if err := amlScheduler.Start(); err != nil {
		logger.Error("Failed to start AML recheck scheduler", err)
	}
	defer amlScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		kycController,
		webhookController,
		notificationController,
		reportController,
		authMiddleware,
		webhookAuthMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
