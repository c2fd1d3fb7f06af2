package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the advisor's metric families.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Advisory pipeline
	RecommendationsTotal   CounterVec
	RecommendationDuration HistogramVec
	SearchFallbacksTotal   CounterVec
	EnrichmentsTotal       CounterVec

	// Text generation
	TextGenRequestsTotal   CounterVec
	TextGenRequestDuration HistogramVec

	// Leads
	LeadsSavedTotal     CounterVec
	LeadSyncRowsTotal   CounterVec
	LeadSyncLastSuccess GaugeVec
	LeadEventsPublished CounterVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultPipelineBuckets        = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultTextGenDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
)

// NewAppMetrics registers every family on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.RecommendationsTotal = collector.RegisterCounter("recommendations_total", "Recommendations computed", "type", "search_method")
	m.RecommendationDuration = collector.RegisterHistogram("recommendation_duration_seconds", "Recommendation pipeline duration", DefaultPipelineBuckets, "type")
	m.SearchFallbacksTotal = collector.RegisterCounter("search_fallbacks_total", "Exact case queries that fell back to prefix search", "reason")
	m.EnrichmentsTotal = collector.RegisterCounter("enrichments_total", "Text enrichment attempts", "kind", "outcome")

	m.TextGenRequestsTotal = collector.RegisterCounter("textgen_requests_total", "Text generation requests", "provider", "status")
	m.TextGenRequestDuration = collector.RegisterHistogram("textgen_request_duration_seconds", "Text generation request duration", DefaultTextGenDurationBuckets, "provider")

	m.LeadsSavedTotal = collector.RegisterCounter("leads_saved_total", "Lead profile saves", "status")
	m.LeadSyncRowsTotal = collector.RegisterCounter("lead_sync_rows_total", "Rows written by the spreadsheet sync", "operation")
	m.LeadSyncLastSuccess = collector.RegisterGauge("lead_sync_last_success_timestamp_seconds", "Unix time of the last successful sync", "sheet")
	m.LeadEventsPublished = collector.RegisterCounter("lead_events_published_total", "Lead events published", "topic", "status")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// RecordRecommendation counts a finished recommendation.
func (m *AppMetrics) RecordRecommendation(resultType, method string, d time.Duration) {
	m.RecommendationsTotal.WithLabelValues(resultType, method).Inc()
	m.RecommendationDuration.WithLabelValues(resultType).Observe(d.Seconds())
}

// RecordSearchFallback counts an exact query that fell through.
func (m *AppMetrics) RecordSearchFallback(reason string) {
	m.SearchFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordEnrichment counts an enrichment attempt.
func (m *AppMetrics) RecordEnrichment(kind, outcome string) {
	m.EnrichmentsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *AppMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *AppMetrics) RecordTextGen(provider string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.TextGenRequestsTotal.WithLabelValues(provider, status).Inc()
	m.TextGenRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *AppMetrics) RecordLeadSaved(status string) {
	m.LeadsSavedTotal.WithLabelValues(status).Inc()
}

func (m *AppMetrics) RecordLeadEvent(topic string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.LeadEventsPublished.WithLabelValues(topic, status).Inc()
}

// RecordLeadSync counts sync row writes and stamps the success gauge.
func (m *AppMetrics) RecordLeadSync(sheet string, updated, appended int, at time.Time) {
	m.LeadSyncRowsTotal.WithLabelValues("update").Add(float64(updated))
	m.LeadSyncRowsTotal.WithLabelValues("append").Add(float64(appended))
	m.LeadSyncLastSuccess.WithLabelValues(sheet).Set(float64(at.Unix()))
}

func (m *AppMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
