package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/beratbay/broadcast-engage/internal/adapter/directory"
	"github.com/beratbay/broadcast-engage/internal/adapter/export"
	httpAdapter "github.com/beratbay/broadcast-engage/internal/adapter/http"
	"github.com/beratbay/broadcast-engage/internal/adapter/postgres"
	"github.com/beratbay/broadcast-engage/internal/adapter/queue"
	"github.com/beratbay/broadcast-engage/internal/adapter/ws"
	"github.com/beratbay/broadcast-engage/internal/app"
	"github.com/beratbay/broadcast-engage/pkg/config"
	"github.com/beratbay/broadcast-engage/pkg/logger"
	"github.com/beratbay/broadcast-engage/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracer(ctx, "broadcast-engage", cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else {
		defer func() { _ = tp.Shutdown(ctx) }()
	}

	db, err := postgres.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	runMigrations(cfg.DatabaseURL, log)

	broadcastRepo := postgres.NewBroadcastRepo(db)
	deliveryRepo := postgres.NewDeliveryRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	producer := queue.NewProducer(cfg.KafkaBrokers, cfg.PrepareTopic, cfg.DataTopic)
	defer func() { _ = producer.Close() }()

	directoryClient := directory.NewClient(cfg.DirectoryBaseURL)
	catalogClient := directory.NewCatalogClient(cfg.CatalogBaseURL)
	exportClient := export.NewClient(cfg.ExportBaseURL)
	wsHub := ws.NewHub()

	provisioningService := app.NewProvisioningService(
		cfg.CompanionAppOn,
		cfg.CompanionExtID,
		settingsRepo,
		catalogClient,
		log,
	)
	sendService := app.NewSendService(
		broadcastRepo,
		deliveryRepo,
		producer,
		provisioningService,
		cfg.ForceCompleteDelay,
		log,
	)
	summaryService := app.NewSummaryService(
		broadcastRepo,
		directoryClient,
		directoryClient,
		exportClient,
		log,
	)
	engagementService := app.NewEngagementService(broadcastRepo, deliveryRepo, wsHub, log)

	broadcastHandler := httpAdapter.NewBroadcastHandler(sendService, summaryService)
	trackingHandler := httpAdapter.NewTrackingHandler(engagementService)
	healthHandler := httpAdapter.NewHealthHandler(db, cfg.KafkaBrokers)
	wsHandler := httpAdapter.NewWebSocketHandler(wsHub)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		BroadcastHandler: broadcastHandler,
		TrackingHandler:  trackingHandler,
		HealthHandler:    healthHandler,
		WebSocketHandler: wsHandler,
		Logger:           log,
		JWTSecret:        cfg.JWTSecret,
		APIRateLimit:     cfg.APIRateLimit,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting http server", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func runMigrations(databaseURL string, log *zap.Logger) {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		log.Warn("failed to create migrator", zap.Error(err))
		return
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Warn("migration failed", zap.Error(err))
		return
	}

	log.Info("database migrations applied")
}
