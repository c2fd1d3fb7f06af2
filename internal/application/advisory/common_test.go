package advisory

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Collection = "cases"
	opts.Schema = casestudy.Schema{
		Industry: "industry",
		System:   "system",
		Action:   "action",
		Measure:  "measure",
		Carbon:   "carbon",
		Energy:   "energy",
		Problem:  "problem",
		Solution: "solution",
	}
	return opts
}

func doc(industry, system, action string, carbon interface{}) casestudy.FieldMap {
	return casestudy.FieldMap{
		"industry": industry,
		"system":   system,
		"action":   action,
		"measure":  system + " " + action,
		"carbon":   carbon,
	}
}

func rec(system, action string, score float64) casestudy.CaseRecord {
	return casestudy.CaseRecord{SystemName: system, ActionType: action, ScoreValue: score, CarbonValue: score}
}

// fakeStore records every query and replays canned results.
type fakeStore struct {
	exact  casestudy.QueryResult
	prefix casestudy.QueryResult
	all    casestudy.QueryResult

	calls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exact:  casestudy.NoResults(),
		prefix: casestudy.NoResults(),
		all:    casestudy.NoResults(),
	}
}

func (f *fakeStore) FindByExactField(_ context.Context, collection, field, value string, limit int) casestudy.QueryResult {
	f.calls = append(f.calls, fmt.Sprintf("exact %s.%s=%q limit=%d", collection, field, value, limit))
	return f.exact
}

func (f *fakeStore) FindByFieldPrefix(_ context.Context, collection, field, prefix string, limit int) casestudy.QueryResult {
	f.calls = append(f.calls, fmt.Sprintf("prefix %s.%s^%q limit=%d", collection, field, prefix, limit))
	return f.prefix
}

func (f *fakeStore) FindAll(_ context.Context, collection string, limit int) casestudy.QueryResult {
	f.calls = append(f.calls, fmt.Sprintf("all %s limit=%d", collection, limit))
	return f.all
}

var _ casestudy.DocumentQuerier = (*fakeStore)(nil)

// mockGenerator is a testify mock for TextGenerator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// recordingMetrics captures observations.
type recordingMetrics struct {
	recommendations []string
	fallbacks       []string
	enrichments     []string
}

func (r *recordingMetrics) RecordRecommendation(resultType, method string, _ time.Duration) {
	r.recommendations = append(r.recommendations, resultType+"/"+method)
}

func (r *recordingMetrics) RecordSearchFallback(reason string) {
	r.fallbacks = append(r.fallbacks, reason)
}

func (r *recordingMetrics) RecordEnrichment(kind, outcome string) {
	r.enrichments = append(r.enrichments, kind+"/"+outcome)
}
