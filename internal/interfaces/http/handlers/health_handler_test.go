package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthRecorder struct {
	mu sync.Mutex
	up map[string]bool
}

func (r *healthRecorder) SetHealth(component string, up bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.up == nil {
		r.up = make(map[string]bool)
	}
	r.up[component] = up
}

func probe(t *testing.T, h *HealthHandler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func ok(name string) HealthChecker {
	return HealthCheckFunc{Component: name, Fn: func(context.Context) error { return nil }}
}

func TestLiveness(t *testing.T) {
	w := probe(t, NewHealthHandler("1.2.3"), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadiness_NoCheckers(t *testing.T) {
	w := probe(t, NewHealthHandler("dev"), "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadiness_AllHealthy(t *testing.T) {
	rec := &healthRecorder{}
	h := NewHealthHandler("dev", ok("opensearch"), ok("redis")).WithRecorder(rec)

	w := probe(t, h, "/readyz")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, map[string]bool{"opensearch": true, "redis": true}, rec.up)
}

func TestReadiness_OneUnhealthy(t *testing.T) {
	rec := &healthRecorder{}
	down := HealthCheckFunc{Component: "redis", Fn: func(context.Context) error { return assert.AnError }}
	h := NewHealthHandler("dev", ok("opensearch"), down).WithRecorder(rec)

	w := probe(t, h, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["redis"].Status)
	assert.Equal(t, assert.AnError.Error(), resp.Components["redis"].Error)
	assert.False(t, rec.up["redis"])
}
