package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/textgen"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

type fakeRecorder struct{ errs []error }

func (f *fakeRecorder) RecordTextGen(_ string, err error, _ time.Duration) {
	f.errs = append(f.errs, err)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, rec Recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), textgen.Config{
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		BaseURL:     srv.URL + "/",
		Temperature: 0.4,
		MaxTokens:   512,
		Timeout:     5 * time.Second,
	}, logging.NewNopLogger(), rec)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresModel(t *testing.T) {
	_, err := NewClient(context.Background(), textgen.Config{APIKey: "k"}, logging.NewNopLogger(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextGenNotConfigured))
}

func TestGenerateText_Success(t *testing.T) {
	var body map[string]interface{}
	rec := &fakeRecorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Replace "},{"text":"chillers."}]}}]}`))
	}, rec)

	out, err := c.GenerateText(context.Background(), "cooling tower advice")
	require.NoError(t, err)
	assert.Equal(t, "Replace chillers.", out)

	contents, ok := body["contents"].([]interface{})
	require.True(t, ok)
	require.Len(t, contents, 1)
	assert.Contains(t, body, "systemInstruction")

	require.Len(t, rec.errs, 1)
	assert.NoError(t, rec.errs[0])
}

func TestGenerateText_NoCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}, nil)

	_, err := c.GenerateText(context.Background(), "p")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextGenEmpty))
}

func TestGenerateText_ServerError(t *testing.T) {
	rec := &fakeRecorder{}
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"backend error","status":"INTERNAL"}}`))
	}, rec)

	_, err := c.GenerateText(context.Background(), "p")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTextGenFailed))
	require.Len(t, rec.errs, 1)
	assert.Error(t, rec.errs[0])
}
