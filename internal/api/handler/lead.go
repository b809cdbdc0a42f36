package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lenilani/leadscout/internal/domain"
	"github.com/lenilani/leadscout/internal/repository"
)

// LeadHandler handles lead browsing endpoints.
type LeadHandler struct {
	leads *repository.LeadRepository
}

// NewLeadHandler creates a new lead handler.
// Parameters:
//   - leads: lead repository instance.
// Returns:
//   - *LeadHandler: initialized handler.
func NewLeadHandler(leads *repository.LeadRepository) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// ListLeads handles GET /api/v1/leads.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *LeadHandler) ListLeads(c *gin.Context) {
	status := domain.LeadStatus(c.Query("status"))

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	leads, err := h.leads.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list leads: " + err.Error(),
		})
		return
	}

	total, err := h.leads.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count leads: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"results": leads,
	})
}

// GetLead handles GET /api/v1/leads/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *LeadHandler) GetLead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Lead ID is required",
		})
		return
	}

	lead, err := h.leads.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Lead not found",
		})
		return
	}

	c.JSON(http.StatusOK, lead)
}
