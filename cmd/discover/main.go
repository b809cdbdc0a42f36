package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

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

// discover runs one discovery cycle and exits. Intended for cron and for
// ad-hoc runs during query-space or ICP tuning.
func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "leadscout-discover",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	deadline := flag.Duration("deadline", 0, "Run deadline override (default from config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	runDeadline := cfg.Discovery.RunDeadline
	if *deadline > 0 {
		runDeadline = *deadline
	}

	appLogger.WithFields(logger.Fields{
		"daily_limit": cfg.Discovery.DailyLimit,
		"batch_size":  cfg.Discovery.BatchSize,
		"deadline":    runDeadline.String(),
	}).Info("Starting discovery run")

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

	ctx, cancel := context.WithTimeout(appLogger.WithContext(context.Background()), runDeadline)
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Build fetch adapters and register them
	adapters := make(map[string]source.Source)
	if cfg.Sources.GoogleMaps.Enabled {
		gm := serp.NewAdapter(&serp.Config{
			APIKey:    cfg.Sources.GoogleMaps.APIKey,
			BaseURL:   cfg.Sources.GoogleMaps.BaseURL,
			RateLimit: cfg.Sources.GoogleMaps.RateLimit,
		})
		adapters[gm.GetSourceID()] = gm
		registerSource(ctx, appLogger, sourceRepo, gm, domain.SourceKindAPI, cfg.Sources.GoogleMaps.Priority)
	}
	if cfg.Sources.Yelp.Enabled {
		yp := yelp.NewAdapter(&yelp.Config{
			APIKey:    cfg.Sources.Yelp.APIKey,
			BaseURL:   cfg.Sources.Yelp.BaseURL,
			RateLimit: cfg.Sources.Yelp.RateLimit,
		})
		adapters[yp.GetSourceID()] = yp
		registerSource(ctx, appLogger, sourceRepo, yp, domain.SourceKindAPI, cfg.Sources.Yelp.Priority)
	}
	if cfg.Sources.Directory.Enabled {
		dir := directory.NewAdapter(cfg.Sources.Directory.Path)
		adapters[dir.GetSourceID()] = dir
		registerSource(ctx, appLogger, sourceRepo, dir, domain.SourceKindDirectory, cfg.Sources.Directory.Priority)
	}

	// Run discovery
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

	startTime := time.Now()
	run, err := orchestrator.RunDiscovery(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Discovery run failed")
	}

	appLogger.WithFields(logger.Fields{
		"run_id":             run.ID,
		"total_discovered":   run.TotalDiscovered,
		"admitted":           run.Admitted,
		"duplicate_skipped":  run.DuplicateSkipped,
		"icp_filtered":       run.ICPFiltered,
		"capacity_exhausted": run.CapacityExhausted,
		"source_errors":      len(run.SourceErrors),
		"ledger_persisted":   run.LedgerPersisted,
		"duration_ms":        time.Since(startTime).Milliseconds(),
	}).Info("Discovery run completed")
}

func registerSource(
	ctx context.Context,
	log *logger.Logger,
	registry *repository.SourceRepository,
	adapter source.Source,
	kind domain.SourceKind,
	priority int,
) {
	err := registry.Register(ctx, &domain.DataSource{
		ID:        adapter.GetSourceID(),
		Name:      adapter.GetDisplayName(),
		Kind:      kind,
		IsEnabled: true,
		Priority:  priority,
	})
	if err != nil {
		log.WithError(err).WithField(logger.FieldSource, adapter.GetSourceID()).
			Warn("Failed to register source")
	}
}
