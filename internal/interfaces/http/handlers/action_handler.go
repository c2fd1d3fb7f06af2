package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/application/leads"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/response"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// Action names accepted by POST /api/v1/actions.
const (
	ActionGetIndustryStats   = "getIndustryStats"
	ActionGetRecommendations = "getRecommendations"
	ActionSaveUserProfile    = "saveUserProfile"
)

// ActionRequest is the single-endpoint body used by the browser front end.
type ActionRequest struct {
	Action   string                 `json:"action"`
	Industry string                 `json:"industry"`
	Goal     interface{}            `json:"goal"`
	GoalPath string                 `json:"goalPath"`
	UserData map[string]interface{} `json:"userData"`
}

// ActionHandler dispatches front-end actions onto the advisory and lead
// services.
type ActionHandler struct {
	advisory *AdvisoryHandler
	leads    leads.Service
	logger   logging.Logger
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(advisorySvc advisory.Service, leadSvc leads.Service, logger logging.Logger) *ActionHandler {
	return &ActionHandler{
		advisory: NewAdvisoryHandler(advisorySvc, logger),
		leads:    leadSvc,
		logger:   logger,
	}
}

// RegisterRoutes registers the action route.
func (h *ActionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/actions", h.Dispatch)
}

// Dispatch handles POST /api/v1/actions
func (h *ActionHandler) Dispatch(c *gin.Context) {
	var req ActionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	var (
		data interface{}
		err  error
	)
	switch req.Action {
	case ActionGetIndustryStats:
		var listing *advisory.CaseListing
		if listing, err = h.advisory.svc.ListIndustryCases(c.Request.Context(), req.Industry); err == nil {
			data = listing.Cases
		}
	case ActionGetRecommendations:
		data, err = h.advisory.recommend(c, RecommendRequest{
			Industry: req.Industry,
			Goal:     req.Goal,
			GoalPath: req.GoalPath,
		})
	case ActionSaveUserProfile:
		if h.leads == nil {
			err = errors.New(errors.ErrCodeFeatureDisabled, "lead capture is not configured")
			break
		}
		data, err = h.leads.SaveLead(c.Request.Context(), stringFields(req.UserData))
	default:
		err = errors.New(errors.ErrCodeAdvisoryUnknownAction, "Unknown action: "+req.Action)
	}

	if err != nil {
		writeError(c, h.logger, "action failed", err)
		return
	}
	response.OK(c, data)
}
