package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/application/leads"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

func newLeadRouter(svc leads.Service) http.Handler {
	return newTestRouter(NewLeadHandler(svc, logging.NewNopLogger()))
}

func TestSaveLead_Created(t *testing.T) {
	svc := new(mockLeadService)
	svc.On("SaveLead", mock.Anything, map[string]string{
		"industry":         "電子業",
		"baseline_total":   "1200",
		"reduction_target": "1,000",
	}).Return(&leads.SaveResult{Status: leads.StatusCreated, ID: "doc-1"}, nil)

	w := doJSON(t, newLeadRouter(svc), http.MethodPost, "/api/v1/leads", map[string]interface{}{
		"industry":         "電子業",
		"baseline_total":   1200,
		"reduction_target": "1,000",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	var got leads.SaveResult
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "created", got.Status)
	assert.Equal(t, "doc-1", got.ID)
	svc.AssertExpectations(t)
}

func TestSaveLead_Invalid(t *testing.T) {
	svc := new(mockLeadService)
	svc.On("SaveLead", mock.Anything, map[string]string{}).
		Return(nil, errors.New(errors.ErrCodeLeadInvalid, "lead has no fields"))

	w := doJSON(t, newLeadRouter(svc), http.MethodPost, "/api/v1/leads", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "LEAD_001", decodeEnvelope(t, w).Error.Code)
}

func TestSaveLead_NotAnObject(t *testing.T) {
	svc := new(mockLeadService)

	w := doJSON(t, newLeadRouter(svc), http.MethodPost, "/api/v1/leads", `["a","b"]`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SaveLead", mock.Anything, mock.Anything)
}

func TestSyncLeads_Success(t *testing.T) {
	svc := new(mockLeadService)
	svc.On("SyncLeads", mock.Anything).Return(&leads.SyncResult{Updated: 2, Appended: 1, Skipped: 1}, nil)

	w := doJSON(t, newLeadRouter(svc), http.MethodPost, "/api/v1/leads/sync", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got leads.SyncResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	assert.Equal(t, leads.SyncResult{Updated: 2, Appended: 1, Skipped: 1}, got)
}

func TestSyncLeads_NotConfigured(t *testing.T) {
	svc := new(mockLeadService)
	svc.On("SyncLeads", mock.Anything).
		Return(nil, errors.New(errors.ErrCodeSheetsNotConfigured, "spreadsheet sync is not configured"))

	w := doJSON(t, newLeadRouter(svc), http.MethodPost, "/api/v1/leads/sync", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SHEETS_001", decodeEnvelope(t, w).Error.Code)
}
