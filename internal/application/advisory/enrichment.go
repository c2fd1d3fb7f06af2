package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
)

// Placeholders returned in place of generated text.
const (
	PlaceholderNotConfigured = "text generation not configured"
	PlaceholderUnavailable   = "text generation unavailable"
)

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Enricher attaches generated text to a finished recommendation.  Every
// failure is logged and absorbed.
type Enricher struct {
	gen     TextGenerator
	logger  logging.Logger
	metrics Metrics
}

// NewEnricher returns an Enricher.  gen may be nil.
func NewEnricher(gen TextGenerator, logger logging.Logger, metrics Metrics) *Enricher {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Enricher{gen: gen, logger: logger, metrics: metrics}
}

// Enabled reports whether a generator is configured.
func (e *Enricher) Enabled() bool {
	return e != nil && e.gen != nil
}

type itemInsight struct {
	PainPoint string `json:"ai_pain_point"`
	Solution  string `json:"ai_solution"`
}

// AnnotateItems asks for a pain point and solution summary per item and
// returns a copy of items with them attached by position.  On any failure
// the items are returned unchanged.
func (e *Enricher) AnnotateItems(ctx context.Context, industry string, items []casestudy.CaseRecord) []casestudy.CaseRecord {
	if !e.Enabled() || len(items) == 0 {
		return items
	}
	log := e.logger.WithContext(ctx)

	raw, err := e.gen.GenerateText(ctx, insightPrompt(industry, items))
	if err != nil {
		log.Warn("item insight generation failed", logging.Err(err))
		e.metrics.RecordEnrichment("insights", "error")
		return items
	}

	insights, err := parseInsights(raw)
	if err != nil {
		log.Warn("item insight reply is not a JSON array", logging.Err(err))
		e.metrics.RecordEnrichment("insights", "unparseable")
		return items
	}

	out := make([]casestudy.CaseRecord, len(items))
	copy(out, items)
	for i := range out {
		if i >= len(insights) {
			break
		}
		out[i].AIPainPoint = insights[i].PainPoint
		out[i].AISolution = insights[i].Solution
	}
	e.metrics.RecordEnrichment("insights", "ok")
	return out
}

// StrategyReport asks for a Markdown strategy report.  It returns
// PlaceholderNotConfigured without a generator and PlaceholderUnavailable
// when generation fails.
func (e *Enricher) StrategyReport(ctx context.Context, industry string, goal float64, path casestudy.GoalPath, items []casestudy.CaseRecord) string {
	if !e.Enabled() {
		return PlaceholderNotConfigured
	}
	text, err := e.gen.GenerateText(ctx, reportPrompt(industry, goal, path, items))
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			err = fmt.Errorf("empty reply")
		}
		e.logger.WithContext(ctx).Warn("strategy report generation failed", logging.Err(err))
		e.metrics.RecordEnrichment("report", "error")
		return PlaceholderUnavailable
	}
	e.metrics.RecordEnrichment("report", "ok")
	return strings.TrimSpace(text)
}

func insightPrompt(industry string, items []casestudy.CaseRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role: Consultant for %s. Task: Summarize Pain Points/Solutions. Input:\n", industry)
	for i, c := range items {
		fmt.Fprintf(&sb, "Case %d: Prob:%s, Sol:%s\n", i, c.Problem, c.Solution)
	}
	sb.WriteString(`Output JSON Array [{ "ai_pain_point": "...", "ai_solution": "..." }]. JSON ONLY.`)
	return sb.String()
}

func reportPrompt(industry string, goal float64, path casestudy.GoalPath, items []casestudy.CaseRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Industry:%s, Goal:%s (%s). Logic Reference:\n", industry, formatAmount(goal), metricLabel(path))
	for _, c := range items {
		fmt.Fprintf(&sb, "- %s: %s\n", c.SystemName, c.MeasureName)
	}
	sb.WriteString("Write strategy report (Markdown, Traditional Chinese).")
	return sb.String()
}

// parseInsights strips Markdown code fences and decodes the JSON array.
func parseInsights(raw string) ([]itemInsight, error) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	var out []itemInsight
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
