package advisory

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// SearchMethod names the lookup that produced a candidate set.
type SearchMethod string

const (
	MethodExact SearchMethod = "Exact"
	MethodFuzzy SearchMethod = "Fuzzy"
)

// Selection is the candidate set chosen by the Selector.
type Selection struct {
	Method  SearchMethod
	Prefix  string
	Input   string
	Records []casestudy.FieldMap
}

// Selector runs the exact-then-prefix lookup.  Queries are issued
// sequentially, never in parallel.
type Selector struct {
	store        casestudy.DocumentQuerier
	labelOf      func(casestudy.FieldMap) string
	collection   string
	field        string
	exactLimit   int
	prefixLength int
	prefixLimit  int
	logger       logging.Logger
	metrics      Metrics
}

// NewSelector builds a Selector over store using the industry field named in
// opts.Schema.
func NewSelector(store casestudy.DocumentQuerier, opts Options, logger logging.Logger, metrics Metrics) *Selector {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	normalizer := casestudy.NewNormalizer(opts.Schema, opts.EnergyMultiplier)
	return &Selector{
		store:        store,
		labelOf:      normalizer.IndustryOf,
		collection:   opts.Collection,
		field:        opts.Schema.Industry,
		exactLimit:   opts.ExactLimit,
		prefixLength: opts.PrefixLength,
		prefixLimit:  opts.PrefixLimit,
		logger:       logger,
		metrics:      metrics,
	}
}

// Select returns the candidates for industry.  A failed or empty exact query
// falls through to the prefix query; a failed prefix query is returned as a
// CASE_001 error.  An empty Records slice with a nil error is the no-data
// outcome.
func (s *Selector) Select(ctx context.Context, industry string) (Selection, error) {
	input := strings.TrimSpace(industry)
	log := s.logger.WithContext(ctx).With(logging.String("industry", input))

	exact := s.store.FindByExactField(ctx, s.collection, s.field, input, s.exactLimit)
	switch exact.Status {
	case casestudy.QuerySuccess:
		return Selection{Method: MethodExact, Input: input, Records: exact.Records}, nil
	case casestudy.QueryError:
		log.Warn("exact case query failed, falling back to prefix search", logging.Err(exact.Err))
		s.metrics.RecordSearchFallback("exact_error")
	default:
		log.Debug("exact case query empty, falling back to prefix search")
		s.metrics.RecordSearchFallback("exact_empty")
	}

	prefix := leadingRunes(input, s.prefixLength)
	sel := Selection{Method: MethodFuzzy, Prefix: prefix, Input: input}

	fuzzy := s.store.FindByFieldPrefix(ctx, s.collection, s.field, prefix, s.prefixLimit)
	if fuzzy.Status == casestudy.QueryError {
		return sel, errors.Wrap(fuzzy.Err, errors.CodeCaseQueryFailed, "prefix case query failed").
			WithDetail("collection=" + s.collection + " prefix=" + prefix)
	}

	for _, rec := range fuzzy.Records {
		if relatedIndustry(input, s.labelOf(rec)) {
			sel.Records = append(sel.Records, rec)
		}
	}
	log.Debug("prefix case query filtered",
		logging.String("prefix", prefix),
		logging.Int("fetched", len(fuzzy.Records)),
		logging.Int("kept", len(sel.Records)),
	)
	return sel, nil
}

// leadingRunes returns the first n characters of s, or s when shorter.
func leadingRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// relatedIndustry reports whether either label contains the other after
// NFKC folding.  Records without a label never match.
func relatedIndustry(input, label string) bool {
	in := norm.NFKC.String(strings.TrimSpace(input))
	lb := norm.NFKC.String(strings.TrimSpace(label))
	if lb == "" {
		return false
	}
	return strings.Contains(lb, in) || strings.Contains(in, lb)
}
