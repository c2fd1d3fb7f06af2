// Package leads implements lead capture and the spreadsheet sync.
package leads

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/netellus-advisor/internal/domain/lead"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// StatusCreated is the only status SaveLead reports; saves are upserts.
const StatusCreated = "created"

// SheetTimeLayout renders timestamps so the spreadsheet parses them as dates.
const SheetTimeLayout = "2006-01-02 15:04:05"

// EventPublisher announces saved leads.
type EventPublisher interface {
	PublishLeadCaptured(ctx context.Context, l *lead.Lead) error
}

// SheetWriter reads and writes spreadsheet rows.  Rows are 1-based.
type SheetWriter interface {
	ReadDocIDRows(ctx context.Context) (map[string]int, error)
	UpdateRow(ctx context.Context, row int, values []interface{}) error
	AppendRow(ctx context.Context, values []interface{}) error
}

// Metrics receives lead observations.
type Metrics interface {
	RecordLeadSaved(status string)
	RecordLeadEvent(topic string, err error)
	RecordLeadSync(sheet string, updated, appended int, at time.Time)
}

type noopMetrics struct{}

func (noopMetrics) RecordLeadSaved(string)                     {}
func (noopMetrics) RecordLeadEvent(string, error)              {}
func (noopMetrics) RecordLeadSync(string, int, int, time.Time) {}

// SaveResult is returned by SaveLead.
type SaveResult struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// SyncResult counts the rows touched by a sync.
type SyncResult struct {
	Updated  int `json:"updated"`
	Appended int `json:"appended"`
	Skipped  int `json:"skipped"`
}

// Service is the lead application service.
type Service interface {
	// SaveLead validates and upserts a lead, then publishes lead.captured
	// when a publisher is configured.  A publish failure does not fail the
	// save.
	SaveLead(ctx context.Context, fields map[string]string) (*SaveResult, error)

	// SyncLeads writes every stored lead to the spreadsheet, updating rows
	// whose column C matches the docId and appending the rest.
	SyncLeads(ctx context.Context) (*SyncResult, error)

	// SyncLead writes a single lead the same way.
	SyncLead(ctx context.Context, docID string) (*SyncResult, error)
}

// ServiceConfig wires a Service.  Publisher, Sheet and Metrics are optional.
type ServiceConfig struct {
	Repository lead.Repository
	Publisher  EventPublisher
	Sheet      SheetWriter
	SheetLabel string
	Location   *time.Location
	Logger     logging.Logger
	Metrics    Metrics
}

type serviceImpl struct {
	repo       lead.Repository
	publisher  EventPublisher
	sheet      SheetWriter
	sheetLabel string
	loc        *time.Location
	logger     logging.Logger
	metrics    Metrics
	now        func() time.Time
	newID      func() string
}

// NewService validates cfg and builds a Service.
func NewService(cfg ServiceConfig) (Service, error) {
	if cfg.Repository == nil {
		return nil, errors.InvalidParam("lead service requires a repository")
	}
	if cfg.Logger == nil {
		return nil, errors.InvalidParam("lead service requires a logger")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SheetLabel == "" {
		cfg.SheetLabel = "leads"
	}
	return &serviceImpl{
		repo:       cfg.Repository,
		publisher:  cfg.Publisher,
		sheet:      cfg.Sheet,
		sheetLabel: cfg.SheetLabel,
		loc:        cfg.Location,
		logger:     cfg.Logger.Named("leads"),
		metrics:    cfg.Metrics,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}, nil
}

func (s *serviceImpl) SaveLead(ctx context.Context, fields map[string]string) (*SaveResult, error) {
	l, err := lead.New(fields, s.now().UTC(), s.newID)
	if err != nil {
		s.metrics.RecordLeadSaved("invalid")
		return nil, err
	}

	stored, err := s.repo.Save(ctx, l)
	if err != nil {
		s.metrics.RecordLeadSaved("failed")
		s.logger.Error("lead save failed", logging.String("doc_id", l.DocID), logging.Err(err))
		return nil, err
	}
	s.metrics.RecordLeadSaved(StatusCreated)
	s.logger.Info("lead saved", logging.String("doc_id", stored.DocID), logging.Int("fields", len(stored.Fields)))

	if s.publisher != nil {
		err := s.publisher.PublishLeadCaptured(ctx, stored)
		s.metrics.RecordLeadEvent("lead.captured", err)
		if err != nil {
			s.logger.Warn("lead event not published", logging.String("doc_id", stored.DocID), logging.Err(err))
		}
	}

	return &SaveResult{Status: StatusCreated, ID: stored.DocID}, nil
}

func (s *serviceImpl) SyncLeads(ctx context.Context) (*SyncResult, error) {
	if s.sheet == nil {
		return nil, errors.New(errors.ErrCodeSheetsNotConfigured, "spreadsheet sync is not configured")
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{}
	for _, l := range stored {
		if l == nil || l.DocID == "" {
			res.Skipped++
		}
	}
	merged := lead.MergeByDocID(stored)
	if len(merged) == 0 {
		s.logger.Info("no leads to sync")
		return res, nil
	}

	if err := s.writeRows(ctx, merged, res); err != nil {
		return res, err
	}
	s.metrics.RecordLeadSync(s.sheetLabel, res.Updated, res.Appended, s.now())
	s.logger.Info("lead sync completed",
		logging.Int("updated", res.Updated),
		logging.Int("appended", res.Appended),
		logging.Int("skipped", res.Skipped))
	return res, nil
}

func (s *serviceImpl) SyncLead(ctx context.Context, docID string) (*SyncResult, error) {
	if s.sheet == nil {
		return nil, errors.New(errors.ErrCodeSheetsNotConfigured, "spreadsheet sync is not configured")
	}
	l, err := s.repo.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	res := &SyncResult{}
	if err := s.writeRows(ctx, []*lead.Lead{l}, res); err != nil {
		return res, err
	}
	s.metrics.RecordLeadSync(s.sheetLabel, res.Updated, res.Appended, s.now())
	return res, nil
}

func (s *serviceImpl) writeRows(ctx context.Context, leads []*lead.Lead, res *SyncResult) error {
	rows, err := s.sheet.ReadDocIDRows(ctx)
	if err != nil {
		return err
	}
	for _, l := range leads {
		values := s.row(l)
		if row, ok := rows[l.DocID]; ok {
			if err := s.sheet.UpdateRow(ctx, row, values); err != nil {
				return err
			}
			res.Updated++
			s.logger.Debug("lead row updated", logging.String("doc_id", l.DocID), logging.Int("row", row))
			continue
		}
		if err := s.sheet.AppendRow(ctx, values); err != nil {
			return err
		}
		res.Appended++
		s.logger.Debug("lead row appended", logging.String("doc_id", l.DocID))
	}
	return nil
}

// row renders l as columns A to K.
func (s *serviceImpl) row(l *lead.Lead) []interface{} {
	return []interface{}{
		s.formatTime(l.CreatedAt),
		s.formatTime(l.LastUpdated),
		l.DocID,
		l.Fields[lead.FieldIndustry],
		l.Fields[lead.FieldPhone],
		l.Fields[lead.FieldTaxID],
		ParseNumber(l.Fields[lead.FieldBaselineTotal]),
		l.Fields[lead.FieldBaselineUnit],
		ParseNumber(l.Fields[lead.FieldReductionTarget]),
		l.Fields[lead.FieldReductionType],
		l.Fields[lead.FieldEmail],
	}
}

func (s *serviceImpl) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(SheetTimeLayout)
}

// ParseNumber returns v as a float64 after removing thousands separators,
// or v unchanged when it is not numeric.
func ParseNumber(v string) interface{} {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if s == "" {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	return f
}
