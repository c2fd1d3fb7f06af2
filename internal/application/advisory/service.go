package advisory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// ResultType discriminates Recommendation shapes.
type ResultType string

const (
	ResultSingle    ResultType = "single"
	ResultPortfolio ResultType = "portfolio"
	ResultNone      ResultType = "none"
)

// Request is one recommendation query.
type Request struct {
	Industry string
	Goal     float64
	GoalPath casestudy.GoalPath

	// SkipEnrichment suppresses text generation for this request.
	SkipEnrichment bool
}

// Recommendation is the pipeline result.  TargetGap is set only for single
// results, TotalValue only for portfolios and Message only for none.
type Recommendation struct {
	Type         ResultType             `json:"type"`
	Items        []casestudy.CaseRecord `json:"items"`
	TargetGap    *float64               `json:"targetGap,omitempty"`
	TotalValue   *float64               `json:"totalValue,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Analysis     string                 `json:"analysis"`
	SearchMethod SearchMethod           `json:"searchMethod,omitempty"`
	Alternatives []casestudy.CaseRecord `json:"alternatives,omitempty"`
	AIAnalysis   string                 `json:"aiAnalysis,omitempty"`

	Industry string             `json:"industry"`
	Goal     float64            `json:"goal"`
	GoalPath casestudy.GoalPath `json:"goalPath"`
}

// CaseListing is a raw, unscored listing of an industry's cases.
type CaseListing struct {
	Industry string                 `json:"industry"`
	Count    int                    `json:"count"`
	Cases    []casestudy.CaseRecord `json:"cases"`
}

// Service is the advisory application service.
type Service interface {
	// Recommend runs the matching pipeline.  No-data outcomes are returned
	// as ResultNone, never as errors.
	Recommend(ctx context.Context, req Request) (*Recommendation, error)

	// ListIndustryCases lists cases for an exact industry, or any cases when
	// industry is blank.  Records with a zero score are included.
	ListIndustryCases(ctx context.Context, industry string) (*CaseListing, error)
}

// ServiceConfig wires a Service.  Generator and Metrics are optional.
type ServiceConfig struct {
	Store     casestudy.DocumentQuerier
	Generator TextGenerator
	Options   Options
	Logger    logging.Logger
	Metrics   Metrics
}

type serviceImpl struct {
	store      casestudy.DocumentQuerier
	selector   *Selector
	normalizer *casestudy.Normalizer
	enricher   *Enricher
	opts       Options
	logger     logging.Logger
	metrics    Metrics
}

// NewService validates cfg and builds a Service.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Store == nil {
		return nil, errors.InvalidParam("advisory service requires a document store")
	}
	if cfg.Logger == nil {
		return nil, errors.InvalidParam("advisory service requires a logger")
	}
	if cfg.Options.MaxMatches < 1 || cfg.Options.PrefixLength < 1 || cfg.Options.PrefixLimit < 1 {
		return nil, errors.InvalidParam("advisory options must set max matches, prefix length and prefix limit")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	logger := cfg.Logger.Named("advisory")
	return &serviceImpl{
		store:      cfg.Store,
		selector:   NewSelector(cfg.Store, cfg.Options, logger, cfg.Metrics),
		normalizer: casestudy.NewNormalizer(cfg.Options.Schema, cfg.Options.EnergyMultiplier),
		enricher:   NewEnricher(cfg.Generator, logger, cfg.Metrics),
		opts:       cfg.Options,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

func (s *serviceImpl) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	start := time.Now()
	if math.IsNaN(req.Goal) || math.IsInf(req.Goal, 0) || req.Goal < 0 {
		return nil, errors.New(errors.CodeInvalidGoal, "goal must be a finite, non-negative number").
			WithDetail(fmt.Sprintf("goal=%v", req.Goal))
	}
	if req.GoalPath != casestudy.GoalPathEnergy {
		req.GoalPath = casestudy.GoalPathCarbon
	}

	sel, err := s.selector.Select(ctx, req.Industry)
	if err != nil {
		return nil, err
	}

	rec := s.score(sel, req)
	if rec.Type != ResultNone && s.opts.Enrich && !req.SkipEnrichment {
		rec.Items = s.enricher.AnnotateItems(ctx, sel.Input, rec.Items)
		rec.AIAnalysis = s.enricher.StrategyReport(ctx, sel.Input, req.Goal, req.GoalPath, rec.Items)
	}

	s.metrics.RecordRecommendation(string(rec.Type), string(rec.SearchMethod), time.Since(start))
	s.logger.WithContext(ctx).Info("recommendation computed",
		logging.String("industry", sel.Input),
		logging.String("type", string(rec.Type)),
		logging.String("method", string(rec.SearchMethod)),
		logging.Int("items", len(rec.Items)),
		logging.Duration("duration", time.Since(start)),
	)
	return rec, nil
}

// score is the pure part of the pipeline: normalize, rank, branch and narrate.
func (s *serviceImpl) score(sel Selection, req Request) *Recommendation {
	rec := &Recommendation{
		SearchMethod: sel.Method,
		Industry:     sel.Input,
		Goal:         req.Goal,
		GoalPath:     req.GoalPath,
		Items:        []casestudy.CaseRecord{},
	}

	if len(sel.Records) == 0 {
		rec.Type = ResultNone
		rec.Message = noDataMessage(sel)
		rec.Analysis = ComposeNarrative(ResultNone, nil, req.GoalPath, req.Goal, 0)
		return rec
	}

	pool := ScoringPool(s.normalizer.NormalizeAll(sel.Records, req.GoalPath))
	if len(pool) == 0 {
		rec.Type = ResultNone
		rec.Message = noEligibleMessage(sel, req.GoalPath)
		rec.Analysis = ComposeNarrative(ResultNone, nil, req.GoalPath, req.Goal, 0)
		return rec
	}

	ranking := Rank(pool, req.Goal, s.opts.MaxMatches)
	best := ranking.Matches[0]

	if NeedsPortfolio(req.Goal, best.ScoreValue, s.opts.PortfolioTriggerRatio) {
		p := AssemblePortfolio(ranking.Ordered, best, req.Goal, s.opts.OvershootFactor)
		total := p.TotalValue
		rec.Type = ResultPortfolio
		rec.Items = p.Items
		rec.TotalValue = &total
		rec.Analysis = ComposeNarrative(ResultPortfolio, p.Items, req.GoalPath, req.Goal, total)
		return rec
	}

	gap := ranking.TargetGap
	rec.Type = ResultSingle
	rec.Items = ranking.Matches
	rec.TargetGap = &gap
	rec.Alternatives = Alternatives(ranking, s.opts.MaxAlternatives)
	rec.Analysis = ComposeNarrative(ResultSingle, ranking.Matches, req.GoalPath, req.Goal, 0)
	return rec
}

func noDataMessage(sel Selection) string {
	if sel.Method == MethodExact {
		return fmt.Sprintf("No case studies found for industry %q.", sel.Input)
	}
	return fmt.Sprintf("No case studies found for industry %q by exact match, and the fuzzy search on %q found no related industries.", sel.Input, sel.Prefix)
}

func noEligibleMessage(sel Selection, path casestudy.GoalPath) string {
	if sel.Method == MethodExact {
		return fmt.Sprintf("Found %d case studies for industry %q, but none report a positive %s reduction.", len(sel.Records), sel.Input, metricLabel(path))
	}
	return fmt.Sprintf("Found %d related case studies via fuzzy search on %q, but none report a positive %s reduction.", len(sel.Records), sel.Prefix, metricLabel(path))
}

func (s *serviceImpl) ListIndustryCases(ctx context.Context, industry string) (*CaseListing, error) {
	industry = strings.TrimSpace(industry)

	var res casestudy.QueryResult
	if industry == "" {
		res = s.store.FindAll(ctx, s.opts.Collection, s.opts.ListingLimit)
	} else {
		res = s.store.FindByExactField(ctx, s.opts.Collection, s.opts.Schema.Industry, industry, s.opts.ListingLimit)
	}
	if res.Status == casestudy.QueryError {
		return nil, errors.Wrap(res.Err, errors.CodeCaseQueryFailed, "case listing query failed").
			WithDetail("industry=" + industry)
	}

	cases := s.normalizer.NormalizeAll(res.Records, casestudy.GoalPathCarbon)
	return &CaseListing{Industry: industry, Count: len(cases), Cases: cases}, nil
}
