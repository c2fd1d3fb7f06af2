package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/handlers"
	"github.com/turtacn/netellus-advisor/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAdvisory struct{}

func (stubAdvisory) Recommend(_ context.Context, req advisory.Request) (*advisory.Recommendation, error) {
	return &advisory.Recommendation{Type: advisory.ResultNone, Industry: req.Industry, Goal: req.Goal, GoalPath: req.GoalPath}, nil
}

func (stubAdvisory) ListIndustryCases(_ context.Context, industry string) (*advisory.CaseListing, error) {
	return &advisory.CaseListing{Industry: industry, Cases: []casestudy.CaseRecord{}}, nil
}

type countingRecorder struct{ n int }

func (r *countingRecorder) RecordHTTPRequest(string, string, int, time.Duration) { r.n++ }

func newTestRouter(rec middleware.HTTPRecorder) *gin.Engine {
	logger := logging.NewNopLogger()
	return NewRouter(RouterConfig{
		AdvisoryHandler: handlers.NewAdvisoryHandler(stubAdvisory{}, logger),
		ActionHandler:   handlers.NewActionHandler(stubAdvisory{}, nil, logger),
		HealthHandler:   handlers.NewHealthHandler("test"),
		Logging:         middleware.DefaultLoggingConfig(),
		Logger:          logger,
		HTTPMetrics:     rec,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
		MaxBodySize: 64,
	})
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_RoutesRegistered(t *testing.T) {
	r := newTestRouter(nil)

	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /readyz",
		"GET /metrics",
		"GET /api/v1/industries/cases",
		"POST /api/v1/recommendations",
		"POST /api/v1/actions",
	} {
		assert.True(t, routes[want], want)
	}
	assert.False(t, routes["POST /api/v1/leads"], "nil lead handler is not mounted")
}

func TestNewRouter_RequestIDAndEnvelope(t *testing.T) {
	w := serve(newTestRouter(nil), http.MethodPost, "/api/v1/recommendations", `{"industry":"x","goal":1}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, w.Header().Get(middleware.HeaderRequestID), body["requestId"])
}

func TestNewRouter_NotFoundEnvelope(t *testing.T) {
	w := serve(newTestRouter(nil), http.MethodGet, "/api/v1/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"COMMON_005"`)
}

func TestNewRouter_BodyLimit(t *testing.T) {
	big := `{"industry":"` + strings.Repeat("x", 200) + `","goal":1}`
	w := serve(newTestRouter(nil), http.MethodPost, "/api/v1/recommendations", big)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewRouter_MetricsAndProbes(t *testing.T) {
	rec := &countingRecorder{}
	r := newTestRouter(rec)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)
	w := serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, "# metrics", w.Body.String())
	assert.Equal(t, 2, rec.n)
}

func TestNewRouter_RateLimit(t *testing.T) {
	r := NewRouter(RouterConfig{
		AdvisoryHandler: handlers.NewAdvisoryHandler(stubAdvisory{}, logging.NewNopLogger()),
		RateLimiter:     middleware.NewKeyedLimiter(0.001, 1, time.Minute),
		RateLimit:       middleware.DefaultRateLimitConfig(),
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/industries/cases", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/api/v1/industries/cases", "").Code)
}
