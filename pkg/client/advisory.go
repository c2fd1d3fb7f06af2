package client

import (
	"context"
	"net/url"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
)

// AdvisoryClient calls the recommendation endpoints.  It satisfies
// advisory.Service so callers can swap it for the in-process service.
type AdvisoryClient struct {
	client *Client
}

var _ advisory.Service = (*AdvisoryClient)(nil)

type recommendRequest struct {
	Industry       string  `json:"industry"`
	Goal           float64 `json:"goal"`
	GoalPath       string  `json:"goalPath,omitempty"`
	SkipEnrichment bool    `json:"skipEnrichment,omitempty"`
}

// Recommend calls POST /api/v1/recommendations.
func (a *AdvisoryClient) Recommend(ctx context.Context, req advisory.Request) (*advisory.Recommendation, error) {
	var rec advisory.Recommendation
	body := recommendRequest{
		Industry:       req.Industry,
		Goal:           req.Goal,
		GoalPath:       string(req.GoalPath),
		SkipEnrichment: req.SkipEnrichment,
	}
	if err := a.client.post(ctx, "/api/v1/recommendations", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListIndustryCases calls GET /api/v1/industries/cases.
func (a *AdvisoryClient) ListIndustryCases(ctx context.Context, industry string) (*advisory.CaseListing, error) {
	path := "/api/v1/industries/cases"
	if industry != "" {
		path += "?" + url.Values{"industry": {industry}}.Encode()
	}
	var listing advisory.CaseListing
	if err := a.client.get(ctx, path, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}
