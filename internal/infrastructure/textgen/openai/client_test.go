package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

type recorded struct {
	provider string
	err      error
}

type fakeRecorder struct{ calls []recorded }

func (f *fakeRecorder) RecordTextGen(provider string, err error, _ time.Duration) {
	f.calls = append(f.calls, recorded{provider, err})
}

func newTestServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, rec Recorder) *Client {
	t.Helper()
	c, err := NewClient(textgen.Config{
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		BaseURL:     baseURL + "/v1/",
		Temperature: 0.2,
		MaxTokens:   256,
		Timeout:     5 * time.Second,
	}, logging.NewNopLogger(), rec)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(textgen.Config{Model: "m"}, logging.NewNopLogger(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextGenNotConfigured))
}

func TestGenerateText_Success(t *testing.T) {
	var seen map[string]interface{}
	srv := newTestServer(t, http.StatusOK, `{
		"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
		"choices":[{"index":0,"message":{"role":"assistant","content":"Install VFDs."},"finish_reason":"stop"}],
		"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}
	}`, &seen)
	rec := &fakeRecorder{}
	c := newTestClient(t, srv.URL, rec)

	out, err := c.GenerateText(context.Background(), "how to save energy")
	require.NoError(t, err)
	assert.Equal(t, "Install VFDs.", out)

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	msgs, ok := seen["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "how to save energy", msgs[1].(map[string]interface{})["content"])

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "openai", rec.calls[0].provider)
	assert.NoError(t, rec.calls[0].err)
}

func TestGenerateText_EmptyChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"id":"c1","choices":[]}`, nil)
	rec := &fakeRecorder{}
	c := newTestClient(t, srv.URL, rec)

	_, err := c.GenerateText(context.Background(), "p")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextGenEmpty))
	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].err)
}

func TestGenerateText_APIError(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized,
		`{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.GenerateText(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextGenFailed))
	assert.Contains(t, err.Error(), "bad key")
}
