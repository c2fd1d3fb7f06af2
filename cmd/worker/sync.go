package main

import (
	"context"
	"time"

	"github.com/turtacn/netellus-advisor/internal/application/leads"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// locker is the part of redis.Mutex the syncer needs.
type locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// leadSyncer pushes stored leads into the spreadsheet, either on a timer or
// one at a time as lead.captured events arrive.
type leadSyncer struct {
	svc        leads.Service
	lock       locker
	interval   time.Duration
	runOnStart bool
	logger     logging.Logger
}

// Run syncs every interval until ctx is cancelled.
func (s *leadSyncer) Run(ctx context.Context) error {
	if s.runOnStart {
		s.syncOnce(ctx)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

// syncOnce runs a full sync if no other worker holds the lock.  It reports
// whether a sync was attempted.
func (s *leadSyncer) syncOnce(ctx context.Context) bool {
	ok, err := s.lock.TryLock(ctx)
	if err != nil {
		s.logger.Warn("lead sync lock unavailable", logging.Err(err))
		return false
	}
	if !ok {
		s.logger.Debug("lead sync already running elsewhere")
		return false
	}
	defer func() {
		if err := s.lock.Unlock(context.Background()); err != nil {
			s.logger.Warn("release lead sync lock", logging.Err(err))
		}
	}()

	start := time.Now()
	res, err := s.svc.SyncLeads(ctx)
	if err != nil {
		s.logger.Error("lead sync failed", logging.Err(err))
		return true
	}
	s.logger.Info("lead sync finished",
		logging.Int("updated", res.Updated),
		logging.Int("appended", res.Appended),
		logging.Int("skipped", res.Skipped),
		logging.Duration("took", time.Since(start)),
	)
	return true
}

// HandleLeadCaptured syncs the single lead named by a lead.captured event.
func (s *leadSyncer) HandleLeadCaptured(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	var payload kafka.LeadCapturedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.DocID == "" {
		return errors.New(errors.ErrCodeSerialization, "lead event has no docId").
			WithDetail("event_id=" + env.EventID)
	}
	if _, err := s.svc.SyncLead(ctx, payload.DocID); err != nil {
		return err
	}
	s.logger.Debug("lead synced from event", logging.String("doc_id", payload.DocID))
	return nil
}
