package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/config"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":{"number":"2.11.0","distribution":"opensearch"}}`))
	}))
	t.Cleanup(search.Close)
	mr := miniredis.RunT(t)

	cfg := config.NewDefaultConfig()
	cfg.Server.Mode = "test"
	cfg.OpenSearch.Addresses = []string{search.URL}
	cfg.OpenSearch.RequestTimeout = time.Second
	cfg.Redis.Addr = mr.Addr()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "advisor_test"
	return cfg
}

func TestAdvisoryOptions(t *testing.T) {
	cfg := config.NewDefaultConfig()

	opts := AdvisoryOptions(cfg.Advisory, true)

	assert.Equal(t, config.DefaultAdvisoryCollection, opts.Collection)
	assert.Equal(t, config.DefaultFieldCarbon, opts.Schema.Carbon)
	assert.Equal(t, config.DefaultFieldIndustry, opts.Schema.Industry)
	assert.Equal(t, config.DefaultPortfolioTriggerRatio, opts.PortfolioTriggerRatio)
	assert.Equal(t, config.DefaultOvershootFactor, opts.OvershootFactor)
	assert.True(t, opts.Enrich)

	assert.False(t, AdvisoryOptions(cfg.Advisory, false).Enrich)

	cfg.Advisory.DisableEnrichment = true
	assert.False(t, AdvisoryOptions(cfg.Advisory, true).Enrich)
}

func TestNewTextGenerator(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNopLogger()

	gen, err := NewTextGenerator(ctx, config.TextGenConfig{Provider: config.TextGenProviderNone}, logger, nil)
	require.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = NewTextGenerator(ctx, config.TextGenConfig{
		Provider: config.TextGenProviderOpenAI,
		APIKey:   "sk-test",
		Model:    config.DefaultOpenAIModel,
	}, logger, nil)
	require.NoError(t, err)
	assert.NotNil(t, gen)

	_, err = NewTextGenerator(ctx, config.TextGenConfig{Provider: config.TextGenProviderOpenAI}, logger, nil)
	assert.Error(t, err)
}

func TestNew_WiresRouter(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.Advisory)
	require.NotNil(t, app.Leads)
	assert.Nil(t, app.Producer)

	router := app.Router()
	for _, path := range []string{"/healthz", "/readyz", cfg.Metrics.Path} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 100 * time.Millisecond

	app, err := New(context.Background(), cfg, logging.NewNopLogger())
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "redis")
}

func TestNew_NilLoggerUsesDefault(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	assert.NotNil(t, app.Logger)
}

func TestClose_Idempotent(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), logging.NewNopLogger())
	require.NoError(t, err)

	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServeHealth_StopsOnCancel(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.ServeHealth(ctx, port) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not stop")
	}
}
