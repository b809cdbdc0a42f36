package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lenilani/leadscout/internal/api"
	"github.com/lenilani/leadscout/internal/config"
	"github.com/lenilani/leadscout/internal/domain"
	"github.com/lenilani/leadscout/internal/logger"
	"github.com/lenilani/leadscout/internal/repository"
	"github.com/lenilani/leadscout/internal/service"
	"github.com/lenilani/leadscout/internal/source"
	"github.com/lenilani/leadscout/internal/source/directory"
	"github.com/lenilani/leadscout/internal/source/serp"
	"github.com/lenilani/leadscout/internal/source/yelp"
)

func main() {
	// Initialize logger first (env-driven: level, format, rotation)
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	rotationRepo := repository.NewRotationRepository(db)
	capacityRepo := repository.NewCapacityRepository(db)
	runRepo := repository.NewRunRepository(db)
	sourceRepo := repository.NewSourceRepository(db)

	// Build fetch adapters and register them in the source registry
	ctx := context.Background()
	adapters, err := buildAdapters(ctx, cfg, sourceRepo)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize sources")
	}
	if len(adapters) == 0 {
		appLogger.Warn("No sources enabled; discovery runs will be empty")
	}

	// Initialize the discovery pipeline
	capacity := service.NewCapacityController(capacityRepo, cfg.Discovery.DailyLimit, nil)
	orchestrator := service.NewOrchestrator(
		cfg,
		leadRepo,
		rotationRepo,
		capacity,
		runRepo,
		sourceRepo,
		adapters,
	)

	// Setup router
	router := api.SetupRouter(cfg, db, orchestrator, capacity, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

// buildAdapters constructs the enabled fetch adapters and registers each in
// the data source registry so operators can toggle and reprioritize them.
func buildAdapters(ctx context.Context, cfg *config.Config, registry *repository.SourceRepository) (map[string]source.Source, error) {
	adapters := make(map[string]source.Source)

	register := func(adapter source.Source, kind domain.SourceKind, enabled bool, priority int) error {
		if !enabled {
			return nil
		}
		adapters[adapter.GetSourceID()] = adapter
		return registry.Register(ctx, &domain.DataSource{
			ID:        adapter.GetSourceID(),
			Name:      adapter.GetDisplayName(),
			Kind:      kind,
			IsEnabled: true,
			Priority:  priority,
		})
	}

	gm := serp.NewAdapter(&serp.Config{
		APIKey:    cfg.Sources.GoogleMaps.APIKey,
		BaseURL:   cfg.Sources.GoogleMaps.BaseURL,
		RateLimit: cfg.Sources.GoogleMaps.RateLimit,
	})
	if err := register(gm, domain.SourceKindAPI, cfg.Sources.GoogleMaps.Enabled, cfg.Sources.GoogleMaps.Priority); err != nil {
		return nil, err
	}

	yp := yelp.NewAdapter(&yelp.Config{
		APIKey:    cfg.Sources.Yelp.APIKey,
		BaseURL:   cfg.Sources.Yelp.BaseURL,
		RateLimit: cfg.Sources.Yelp.RateLimit,
	})
	if err := register(yp, domain.SourceKindAPI, cfg.Sources.Yelp.Enabled, cfg.Sources.Yelp.Priority); err != nil {
		return nil, err
	}

	dir := directory.NewAdapter(cfg.Sources.Directory.Path)
	if err := register(dir, domain.SourceKindDirectory, cfg.Sources.Directory.Enabled, cfg.Sources.Directory.Priority); err != nil {
		return nil, err
	}

	return adapters, nil
}
