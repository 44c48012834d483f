// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/api"
	"github.com/andresuchdata/pharmacare/backend-go/internal/api/middleware"
	"github.com/andresuchdata/pharmacare/backend-go/internal/auth"
	"github.com/andresuchdata/pharmacare/backend-go/internal/cache"
	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/jobs"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/mongodb"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/andresuchdata/pharmacare/backend-go/internal/storage"
	"github.com/andresuchdata/pharmacare/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	ctx := context.Background()
	loc := cfg.Server.Location()
	clock := service.NewClock(loc)

	// Initialize MongoDB
	store, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()
	if err := mongodb.EnsureIndexes(ctx, store.DB); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	healthChecks := map[string]api.HealthCheck{
		"mongo": func(ctx context.Context) error { return store.Client.Ping(ctx, readpref.Primary()) },
	}

	// Alert history lives in Postgres when enabled
	var snapshots repository.AlertSnapshotRepository
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to Postgres")
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to migrate Postgres schema")
		}
		snapshots = postgres.NewAlertSnapshotRepository(db)
		healthChecks["postgres"] = db.PingContext
	} else {
		snapshots = postgres.NewNoopAlertSnapshotRepository()
	}

	// Initialize caches
	reportCache := cache.NewNoopReportCache()
	searchCache := cache.NewNoopSearchCache()
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		} else {
			defer client.Close()
			reportCache = cache.NewReportCache(client, cfg.Cache)
			searchCache = cache.NewSearchCache(client, cfg.Cache)
			healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	// Initialize prescription storage
	objects, err := storage.New(cfg.Storage, cfg.App.UploadDir)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}
	uploadDir := ""
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		uploadDir = cfg.App.UploadDir
	}

	// Initialize repositories
	accounts := mongodb.NewAccountRepository(store.DB)
	medicines := mongodb.NewMedicineRepository(store.DB)
	orders := mongodb.NewOrderRepository(store.DB)
	prescriptions := mongodb.NewPrescriptionRepository(store.DB)
	notificationRepo := mongodb.NewNotificationRepository(store.DB)

	// Initialize services
	tokens := auth.NewJWTService(cfg.Auth)
	notifications := service.NewNotificationService(notificationRepo)
	services := &api.Services{
		Auth:          service.NewAuthService(accounts, tokens, auth.NewHasher(cfg.Auth.BcryptCost), service.LogOTPSender{}, cfg.Auth.OTPTTL, searchCache, clock),
		Analytics:     service.NewAnalyticsService(orders, medicines, reportCache, clock),
		Inventory:     service.NewInventoryService(medicines, accounts, snapshots, reportCache, searchCache, clock),
		Orders:        service.NewOrderService(orders, medicines, accounts, notifications, reportCache, searchCache),
		Prescriptions: service.NewPrescriptionService(prescriptions, orders, accounts, objects, notifications, reportCache, cfg.Storage.MaxUploadBytes, clock),
		Notifications: notifications,
		Tokens:        tokens,
	}

	// Start background jobs
	if cfg.Jobs.Enabled {
		sweeper := service.NewAlertSweeper(accounts, medicines, snapshots, notifications, cfg.Jobs.SweepWorkers, clock)
		scheduler, err := jobs.NewScheduler(sweeper, cfg.Jobs.AlertSweepSpec, loc)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to schedule alert sweep")
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
		logger.Log.Info().Time("next_run", scheduler.Next()).Msg("Alert sweep scheduled")
	}

	// Initialize HTTP server
	router := api.NewRouter(services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      uploadDir,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		HealthChecks:   healthChecks,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
