package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"data":      data,
		"requestId": "req-server",
	})
}

func writeErrorEnvelope(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   false,
		"error":     map[string]string{"code": code, "message": msg},
		"requestId": "req-server",
	})
}

type testLogger struct {
	count int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Infof(format string, args ...interface{})  { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Errorf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }

func TestNewClient_Validation(t *testing.T) {
	cases := []struct {
		name string
		url  string
		ok   bool
	}{
		{"http", "http://localhost:8080", true},
		{"https trailing slash", "https://advisor.example.com/", true},
		{"empty", "", false},
		{"ftp scheme", "ftp://example.com", false},
		{"no scheme", "advisor.example.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewClient(tc.url)
			if tc.ok {
				require.NoError(t, err)
				assert.False(t, strings.HasSuffix(c.baseURL, "/"))
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSubClients_AreSingletons(t *testing.T) {
	c, err := NewClient("http://localhost")
	require.NoError(t, err)
	assert.Same(t, c.Advisory(), c.Advisory())
	assert.Same(t, c.Leads(), c.Leads())
}

func TestDo_SetsHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(w, http.StatusOK, map[string]string{"ok": "yes"})
	}, WithUserAgent("custom-agent"))

	var out map[string]string
	require.NoError(t, c.get(context.Background(), "ping", &out))
	assert.Equal(t, "yes", out["ok"])
}

func TestDo_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeErrorEnvelope(w, http.StatusBadRequest, string(errors.ErrCodeAdvisoryInvalidGoal), "goal is required")
	})

	err := c.post(context.Background(), "/api/v1/recommendations", map[string]string{}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, string(errors.ErrCodeAdvisoryInvalidGoal), apiErr.Code)
	assert.Equal(t, "req-server", apiErr.RequestID)
	assert.False(t, apiErr.IsServerError())
	assert.Contains(t, apiErr.Error(), "goal is required")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDo_ServerErrorRetriesThenSucceeds(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeErrorEnvelope(w, http.StatusBadGateway, string(errors.ErrCodeCaseQueryFailed), "search failed")
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]int{"n": 1})
	}, WithLogger(logger))

	var out map[string]int
	require.NoError(t, c.get(context.Background(), "/x", &out))
	assert.Equal(t, 1, out["n"])
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Greater(t, atomic.LoadInt32(&logger.count), int32(0))
}

func TestDo_ServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeErrorEnvelope(w, http.StatusServiceUnavailable, string(errors.ErrCodeServiceUnavailable), "down")
	}, WithRetryMax(2))

	err := c.get(context.Background(), "/x", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestDo_RateLimitHonoursRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			writeErrorEnvelope(w, http.StatusTooManyRequests, string(errors.ErrCodeTooManyRequests), "slow down")
			return
		}
		writeEnvelope(w, http.StatusOK, nil)
	})

	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDo_NonEnvelopeErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "404 page not found\n")
	})

	err := c.get(context.Background(), "/missing", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "404 page not found", apiErr.Message)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeErrorEnvelope(w, http.StatusInternalServerError, string(errors.ErrCodeInternal), "boom")
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.get(ctx, "/x", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAdvisoryClient_Recommend(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/recommendations", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Steel", body["industry"])
		assert.Equal(t, 120.0, body["goal"])
		assert.Equal(t, "energy", body["goalPath"])
		assert.Equal(t, true, body["skipEnrichment"])

		writeEnvelope(w, http.StatusOK, advisory.Recommendation{
			Type:     advisory.ResultSingle,
			Items:    []casestudy.CaseRecord{{Industry: "Steel", SystemName: "Kiln", EnergyValue: 118}},
			Industry: "Steel",
			Goal:     120,
		})
	})

	rec, err := c.Advisory().Recommend(context.Background(), advisory.Request{
		Industry:       "Steel",
		Goal:           120,
		GoalPath:       casestudy.GoalPathEnergy,
		SkipEnrichment: true,
	})
	require.NoError(t, err)
	assert.Equal(t, advisory.ResultSingle, rec.Type)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "Kiln", rec.Items[0].SystemName)
}

func TestAdvisoryClient_ListIndustryCases(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/industries/cases", r.URL.Path)
		assert.Equal(t, "Food & Beverage", r.URL.Query().Get("industry"))
		writeEnvelope(w, http.StatusOK, advisory.CaseListing{Industry: "Food & Beverage", Count: 0, Cases: []casestudy.CaseRecord{}})
	})

	listing, err := c.Advisory().ListIndustryCases(context.Background(), "Food & Beverage")
	require.NoError(t, err)
	assert.Equal(t, "Food & Beverage", listing.Industry)
	assert.Zero(t, listing.Count)
}

func TestLeadsClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/leads":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.c", body["email"])
			writeEnvelope(w, http.StatusCreated, map[string]string{"status": "success", "id": "a_b_c"})
		case "/api/v1/leads/sync":
			writeEnvelope(w, http.StatusOK, map[string]int{"updated": 1, "appended": 2, "skipped": 0})
		default:
			http.NotFound(w, r)
		}
	})

	saved, err := c.Leads().SaveLead(context.Background(), map[string]string{"email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "a_b_c", saved.ID)

	synced, err := c.Leads().SyncLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced.Updated)
	assert.Equal(t, 2, synced.Appended)
}

func TestCalculateBackoff_Bounds(t *testing.T) {
	c, err := NewClient("http://localhost", WithRetryWait(100*time.Millisecond, 400*time.Millisecond))
	require.NoError(t, err)

	for attempt := 1; attempt <= 5; attempt++ {
		b := c.calculateBackoff(attempt)
		base := 100 * time.Millisecond * time.Duration(1<<uint(attempt-1))
		if base > 400*time.Millisecond {
			base = 400 * time.Millisecond
		}
		assert.GreaterOrEqual(t, b, base, fmt.Sprintf("attempt %d", attempt))
		assert.Less(t, b, base+base/4+1, fmt.Sprintf("attempt %d", attempt))
	}
}

func TestCalculateBackoff_TinyWaitDoesNotPanic(t *testing.T) {
	c, err := NewClient("http://localhost", WithRetryWait(time.Nanosecond, time.Nanosecond))
	require.NoError(t, err)
	assert.NotPanics(t, func() { c.calculateBackoff(1) })
}
