package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lenilani/leadscout/internal/api/handler"
	"github.com/lenilani/leadscout/internal/api/middleware"
	"github.com/lenilani/leadscout/internal/config"
	"github.com/lenilani/leadscout/internal/logger"
	"github.com/lenilani/leadscout/internal/repository"
	"github.com/lenilani/leadscout/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	cfg *config.Config,
	db *gorm.DB,
	orchestrator *service.Orchestrator,
	capacity *service.CapacityController,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	leadRepo := repository.NewLeadRepository(db)
	runRepo := repository.NewRunRepository(db)
	sourceRepo := repository.NewSourceRepository(db)

	healthHandler := handler.NewHealthHandler(db)
	leadHandler := handler.NewLeadHandler(leadRepo)
	discoveryHandler := handler.NewDiscoveryHandler(orchestrator, runRepo, capacity, cfg.Discovery.RunDeadline)
	statsHandler := handler.NewStatsHandler(leadRepo, sourceRepo, capacity)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Discovery
		v1.POST("/discovery/run", discoveryHandler.TriggerRun)
		v1.GET("/discovery/status", discoveryHandler.GetRunStatus)
		v1.GET("/discovery/runs", discoveryHandler.ListRuns)
		v1.GET("/discovery/runs/:id", discoveryHandler.GetRun)
		v1.GET("/discovery/stats", statsHandler.GetStats)

		// Leads
		v1.GET("/leads", leadHandler.ListLeads)
		v1.GET("/leads/:id", leadHandler.GetLead)
	}

	return r
}
