package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/application/leads"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/response"
)

// LeadHandler captures prospect profiles and triggers spreadsheet syncs.
type LeadHandler struct {
	svc    leads.Service
	logger logging.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(svc leads.Service, logger logging.Logger) *LeadHandler {
	return &LeadHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers lead routes.
func (h *LeadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads", h.SaveLead)
	rg.POST("/leads/sync", h.SyncLeads)
}

// SaveLead handles POST /api/v1/leads.  The body is a flat JSON object of
// profile fields; non-string values are stored in their text form.
func (h *LeadHandler) SaveLead(c *gin.Context) {
	var body map[string]interface{}
	if err := bindJSON(c, &body); err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.svc.SaveLead(c.Request.Context(), stringFields(body))
	if err != nil {
		writeError(c, h.logger, "failed to save lead", err)
		return
	}
	response.JSON(c, http.StatusCreated, res)
}

// SyncLeads handles POST /api/v1/leads/sync
func (h *LeadHandler) SyncLeads(c *gin.Context) {
	res, err := h.svc.SyncLeads(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "failed to sync leads", err)
		return
	}
	response.OK(c, res)
}
