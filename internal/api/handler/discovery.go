package handler

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lenilani/leadscout/internal/logger"
	"github.com/lenilani/leadscout/internal/repository"
	"github.com/lenilani/leadscout/internal/service"
)

// DiscoveryHandler handles discovery run endpoints. At most one run executes
// at a time; a trigger while a run is in flight is rejected with 409.
type DiscoveryHandler struct {
	orchestrator *service.Orchestrator
	runs         *repository.RunRepository
	capacity     *service.CapacityController
	runDeadline  time.Duration

	mu            sync.RWMutex
	isRunning     bool
	lastRunID     string
	lastRunTime   time.Time
	lastRunStatus string
}

// NewDiscoveryHandler creates a new discovery handler.
// Parameters:
//   - orchestrator: discovery pipeline orchestrator.
//   - runs: run record repository.
//   - capacity: shared daily capacity controller.
//   - runDeadline: hard deadline applied to each triggered run.
// Returns:
//   - *DiscoveryHandler: initialized handler.
func NewDiscoveryHandler(
	orchestrator *service.Orchestrator,
	runs *repository.RunRepository,
	capacity *service.CapacityController,
	runDeadline time.Duration,
) *DiscoveryHandler {
	return &DiscoveryHandler{
		orchestrator: orchestrator,
		runs:         runs,
		capacity:     capacity,
		runDeadline:  runDeadline,
	}
}

// RunStatusResponse represents the discovery run status.
type RunStatusResponse struct {
	IsRunning     bool   `json:"is_running"`
	LastRunID     string `json:"last_run_id,omitempty"`
	LastRunTime   string `json:"last_run_time,omitempty"`
	LastRunStatus string `json:"last_run_status,omitempty"`
}

// TriggerRun handles POST /api/v1/discovery/run.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DiscoveryHandler) TriggerRun(c *gin.Context) {
	ctx := c.Request.Context()

	h.mu.Lock()
	if h.isRunning {
		h.mu.Unlock()
		logger.CtxWarn(ctx, "Discovery run rejected: already running, client_ip=%s", c.ClientIP())
		c.JSON(http.StatusConflict, gin.H{"error": "A discovery run is already in progress"})
		return
	}
	h.isRunning = true
	h.mu.Unlock()

	logger.CtxInfo(ctx, "Discovery run triggered: client_ip=%s", c.ClientIP())

	// Run on a background context so an HTTP client timeout cannot cancel
	// the pipeline mid-run. The run deadline bounds it instead.
	runCtx, cancel := context.WithTimeout(logger.FromContext(ctx).WithContext(context.Background()), h.runDeadline)
	defer cancel()

	startTime := time.Now()
	run, err := h.orchestrator.RunDiscovery(runCtx)
	duration := time.Since(startTime)

	h.mu.Lock()
	h.isRunning = false
	h.lastRunTime = time.Now()
	if run != nil {
		h.lastRunID = run.ID
	}
	if err != nil {
		h.lastRunStatus = "failed: " + err.Error()
	} else {
		h.lastRunStatus = "success"
	}
	h.mu.Unlock()

	if err != nil {
		logger.With(logger.Fields{
			logger.FieldDurationMs: duration.Milliseconds(),
		}).Error(ctx, "Discovery run failed: error=%v", err)
		status := http.StatusInternalServerError
		if _, ok := err.(*service.ConfigurationError); ok {
			status = http.StatusUnprocessableEntity
		}
		resp := gin.H{"error": err.Error()}
		if run != nil {
			resp["run"] = run
		}
		c.JSON(status, resp)
		return
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: duration.Milliseconds(),
		logger.FieldCount:      run.Admitted,
	}).Info(ctx, "Discovery run completed: run_id=%s, discovered=%d, admitted=%d",
		run.ID, run.TotalDiscovered, run.Admitted)

	c.JSON(http.StatusOK, gin.H{
		"message": "Discovery run completed",
		"run":     run,
	})
}

// GetRunStatus handles GET /api/v1/discovery/status.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DiscoveryHandler) GetRunStatus(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := RunStatusResponse{
		IsRunning:     h.isRunning,
		LastRunID:     h.lastRunID,
		LastRunStatus: h.lastRunStatus,
	}
	if !h.lastRunTime.IsZero() {
		resp.LastRunTime = h.lastRunTime.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /api/v1/runs.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DiscoveryHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := h.runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list runs: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":   limit,
		"offset":  offset,
		"results": runs,
	})
}

// GetRun handles GET /api/v1/runs/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *DiscoveryHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Run ID is required",
		})
		return
	}

	run, err := h.runs.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Run not found",
		})
		return
	}

	c.JSON(http.StatusOK, run)
}
