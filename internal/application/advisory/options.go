// Package advisory implements the case-matching and portfolio-selection
// pipeline: search strategy selection, normalization, scoring with
// deduplication, greedy portfolio assembly and the templated narrative.
package advisory

import (
	"time"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
)

// Options carries the pipeline constants.  It is passed at construction and
// never read from process globals.
type Options struct {
	Collection string
	Schema     casestudy.Schema

	ExactLimit   int
	PrefixLength int
	PrefixLimit  int

	MaxMatches      int
	MaxAlternatives int

	// PortfolioTriggerRatio switches to portfolio mode when
	// target > best.ScoreValue * PortfolioTriggerRatio.
	PortfolioTriggerRatio float64

	// OvershootFactor scales the target the portfolio accumulates toward.
	OvershootFactor float64

	EnergyMultiplier float64
	ListingLimit     int
	Enrich           bool
}

// DefaultOptions returns the production constants.
func DefaultOptions() Options {
	return Options{
		Collection: "Case",
		Schema: casestudy.Schema{
			Industry: "案例公司產業別",
			System:   "系統名稱",
			Action:   "措施類型",
			Measure:  "措施名稱",
			Carbon:   "碳減量(公噸/年)",
			Energy:   "節能潛力",
			Problem:  "企業問題闡述",
			Solution: "解決方案闡述",
		},
		ExactLimit:            500,
		PrefixLength:          2,
		PrefixLimit:           30,
		MaxMatches:            3,
		MaxAlternatives:       2,
		PortfolioTriggerRatio: 5,
		OvershootFactor:       1.1,
		EnergyMultiplier:      1000,
		ListingLimit:          500,
		Enrich:                true,
	}
}

// Metrics receives pipeline observations.  A nil Metrics is replaced with a
// no-op implementation.
type Metrics interface {
	RecordRecommendation(resultType, method string, duration time.Duration)
	RecordSearchFallback(reason string)
	RecordEnrichment(kind, outcome string)
}

type noopMetrics struct{}

func (noopMetrics) RecordRecommendation(string, string, time.Duration) {}
func (noopMetrics) RecordSearchFallback(string)                        {}
func (noopMetrics) RecordEnrichment(string, string)                    {}
