package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/response"
)

// AdvisoryHandler serves case listings and recommendations.
type AdvisoryHandler struct {
	svc    advisory.Service
	logger logging.Logger
}

// NewAdvisoryHandler creates a new AdvisoryHandler.
func NewAdvisoryHandler(svc advisory.Service, logger logging.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{svc: svc, logger: logger}
}

// RecommendRequest is the request body for POST /api/v1/recommendations.
// Goal is a number or a numeric string.
type RecommendRequest struct {
	Industry string      `json:"industry"`
	Goal     interface{} `json:"goal"`
	GoalPath string      `json:"goalPath"`

	SkipEnrichment bool `json:"skipEnrichment,omitempty"`
}

// RegisterRoutes registers advisory routes.
func (h *AdvisoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/industries/cases", h.ListIndustryCases)
	rg.POST("/recommendations", h.Recommend)
}

// ListIndustryCases handles GET /api/v1/industries/cases?industry=
func (h *AdvisoryHandler) ListIndustryCases(c *gin.Context) {
	listing, err := h.svc.ListIndustryCases(c.Request.Context(), c.Query("industry"))
	if err != nil {
		writeError(c, h.logger, "failed to list industry cases", err)
		return
	}
	response.OK(c, listing)
}

// Recommend handles POST /api/v1/recommendations
func (h *AdvisoryHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	rec, err := h.recommend(c, req)
	if err != nil {
		writeError(c, h.logger, "failed to compute recommendation", err)
		return
	}
	response.OK(c, rec)
}

func (h *AdvisoryHandler) recommend(c *gin.Context, req RecommendRequest) (*advisory.Recommendation, error) {
	goal, err := parseGoal(req.Goal)
	if err != nil {
		return nil, err
	}
	return h.svc.Recommend(c.Request.Context(), advisory.Request{
		Industry: req.Industry,
		Goal:     goal,
		GoalPath: casestudy.ParseGoalPath(req.GoalPath),

		SkipEnrichment: req.SkipEnrichment,
	})
}
