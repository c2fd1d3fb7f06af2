package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

func newAdvisoryRouter(svc advisory.Service) http.Handler {
	return newTestRouter(NewAdvisoryHandler(svc, logging.NewNopLogger()))
}

func TestListIndustryCases_Success(t *testing.T) {
	svc := new(mockAdvisoryService)
	listing := &advisory.CaseListing{
		Industry: "電子業",
		Count:    1,
		Cases:    []casestudy.CaseRecord{{Industry: "電子業", SystemName: "空壓系統", CarbonValue: 10}},
	}
	svc.On("ListIndustryCases", mock.Anything, "電子業").Return(listing, nil)

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodGet, "/api/v1/industries/cases?industry=%E9%9B%BB%E5%AD%90%E6%A5%AD", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	var got advisory.CaseListing
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "空壓系統", got.Cases[0].SystemName)
	svc.AssertExpectations(t)
}

func TestListIndustryCases_StoreFailure(t *testing.T) {
	svc := new(mockAdvisoryService)
	svc.On("ListIndustryCases", mock.Anything, "").
		Return(nil, errors.New(errors.ErrCodeCaseQueryFailed, "case study query failed"))

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodGet, "/api/v1/industries/cases", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "CASE_001", env.Error.Code)
}

func TestRecommend_Success(t *testing.T) {
	svc := new(mockAdvisoryService)
	gap := 0.0
	rec := &advisory.Recommendation{
		Type:      advisory.ResultSingle,
		Items:     []casestudy.CaseRecord{{SystemName: "A", ActionType: "X", ScoreValue: 100}},
		TargetGap: &gap,
		Analysis:  "analysis",
		Goal:      90,
		GoalPath:  casestudy.GoalPathCarbon,
	}
	svc.On("Recommend", mock.Anything, advisory.Request{
		Industry: "電子業",
		Goal:     90,
		GoalPath: casestudy.GoalPathCarbon,
	}).Return(rec, nil)

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodPost, "/api/v1/recommendations",
		map[string]interface{}{"industry": "電子業", "goal": 90, "goalPath": "carbon"})

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var got advisory.Recommendation
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, advisory.ResultSingle, got.Type)
	require.NotNil(t, got.TargetGap)
	assert.Equal(t, 0.0, *got.TargetGap)
	svc.AssertExpectations(t)
}

func TestRecommend_StringGoalAndEnergyPath(t *testing.T) {
	svc := new(mockAdvisoryService)
	svc.On("Recommend", mock.Anything, advisory.Request{
		Industry: "紡織業",
		Goal:     12000,
		GoalPath: casestudy.GoalPathEnergy,
	}).Return(&advisory.Recommendation{Type: advisory.ResultNone}, nil)

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodPost, "/api/v1/recommendations",
		map[string]interface{}{"industry": "紡織業", "goal": "12,000", "goalPath": "energy"})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestRecommend_InvalidGoal(t *testing.T) {
	svc := new(mockAdvisoryService)

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodPost, "/api/v1/recommendations",
		map[string]interface{}{"industry": "電子業", "goal": -5})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "ADVISORY_001", env.Error.Code)
	svc.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
}

func TestRecommend_InvalidBody(t *testing.T) {
	svc := new(mockAdvisoryService)

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodPost, "/api/v1/recommendations", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "COMMON_002", env.Error.Code)
}

func TestRecommend_InternalErrorIsMasked(t *testing.T) {
	svc := new(mockAdvisoryService)
	svc.On("Recommend", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	w := doJSON(t, newAdvisoryRouter(svc), http.MethodPost, "/api/v1/recommendations",
		map[string]interface{}{"industry": "電子業", "goal": 1})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "internal server error", env.Error.Message)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
