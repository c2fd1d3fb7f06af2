package client

import (
	"context"

	"github.com/turtacn/netellus-advisor/internal/application/leads"
)

// LeadsClient calls the lead endpoints.
type LeadsClient struct {
	client *Client
}

// SaveLead calls POST /api/v1/leads.
func (l *LeadsClient) SaveLead(ctx context.Context, fields map[string]string) (*leads.SaveResult, error) {
	var res leads.SaveResult
	if err := l.client.post(ctx, "/api/v1/leads", fields, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SyncLeads calls POST /api/v1/leads/sync.
func (l *LeadsClient) SyncLeads(ctx context.Context) (*leads.SyncResult, error) {
	var res leads.SyncResult
	if err := l.client.post(ctx, "/api/v1/leads/sync", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
