package opensearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

func newTestServer(statusCode int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}))
}

func newTestConfig(addr string) ClientConfig {
	return ClientConfig{
		Addresses:      []string{addr},
		RequestTimeout: time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, ValidateConfig(newTestConfig("http://localhost:9200")))

	assert.Equal(t, ErrInvalidConfig, ValidateConfig(ClientConfig{RequestTimeout: time.Second}))

	cfg := newTestConfig("http://localhost:9200")
	cfg.MaxRetries = -1
	assert.ErrorContains(t, ValidateConfig(cfg), "MaxRetries must be >= 0")

	cfg = newTestConfig("http://localhost:9200")
	cfg.RequestTimeout = 0
	assert.ErrorContains(t, ValidateConfig(cfg), "RequestTimeout must be > 0")
}

func TestNewClient_Success(t *testing.T) {
	server := newTestServer(http.StatusOK)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	require.NoError(t, err)
	assert.True(t, client.IsHealthy())
	assert.NotNil(t, client.GetClient())
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	server := newTestServer(http.StatusServiceUnavailable)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	assert.Nil(t, client)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaseStoreUnhealthy))
}

func TestClient_PingTracksHealth(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	failing.Store(true)
	assert.Error(t, client.Ping(context.Background()))
	assert.False(t, client.IsHealthy())

	failing.Store(false)
	assert.NoError(t, client.Ping(context.Background()))
	assert.True(t, client.IsHealthy())
}
