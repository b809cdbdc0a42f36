package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lenilani/leadscout/internal/repository"
	"github.com/lenilani/leadscout/internal/service"
)

// StatsHandler exposes aggregate system statistics.
type StatsHandler struct {
	leads    *repository.LeadRepository
	sources  *repository.SourceRepository
	capacity *service.CapacityController
}

// NewStatsHandler creates a new stats handler.
// Parameters:
//   - leads: lead repository instance.
//   - sources: source registry repository.
//   - capacity: shared daily capacity controller.
// Returns:
//   - *StatsHandler: initialized handler.
func NewStatsHandler(
	leads *repository.LeadRepository,
	sources *repository.SourceRepository,
	capacity *service.CapacityController,
) *StatsHandler {
	return &StatsHandler{
		leads:    leads,
		sources:  sources,
		capacity: capacity,
	}
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StatsHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.leads.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count leads: " + err.Error(),
		})
		return
	}

	bySource, err := h.leads.CountBySource(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count leads by source: " + err.Error(),
		})
		return
	}

	remaining, err := h.capacity.Remaining(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read capacity: " + err.Error(),
		})
		return
	}

	sources, err := h.sources.ListEnabled(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list sources: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_leads":        total,
		"leads_by_source":    bySource,
		"remaining_capacity": remaining,
		"enabled_sources":    sources,
	})
}
