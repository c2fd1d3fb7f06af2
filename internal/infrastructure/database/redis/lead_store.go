package redis

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/netellus-advisor/internal/domain/lead"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// Both keys share the {lead} hash tag so the save transaction stays in one
// cluster slot.
const (
	leadKeyPrefix = "{lead}:"
	leadIndexKey  = "{lead}:index"
)

// LeadStore keeps each lead in a hash at <prefix>{lead}:<docId> and the set
// of known ids at <prefix>{lead}:index.
type LeadStore struct {
	client *Client
	logger logging.Logger
	now    func() time.Time
}

var _ lead.Repository = (*LeadStore)(nil)

func NewLeadStore(client *Client, log logging.Logger) *LeadStore {
	return &LeadStore{client: client, logger: log, now: time.Now}
}

func (s *LeadStore) leadKey(docID string) string {
	return s.client.Key(leadKeyPrefix + docID)
}

// Save writes l in one transaction.  createdAt is set only if the hash has
// none, so the first submission time survives later updates.
func (s *LeadStore) Save(ctx context.Context, l *lead.Lead) (*lead.Lead, error) {
	if l == nil || l.DocID == "" {
		return nil, errors.New(errors.ErrCodeLeadInvalid, "lead requires a docId")
	}
	key := s.leadKey(l.DocID)

	createdAt, updatedAt := l.CreatedAt, l.LastUpdated
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}

	values := make([]interface{}, 0, 2*len(l.Fields)+4)
	for k, v := range l.Fields {
		values = append(values, k, v)
	}
	values = append(values,
		lead.FieldDocID, l.DocID,
		lead.FieldLastUpdated, updatedAt.UTC().Format(time.RFC3339Nano),
	)

	rdb := s.client.GetUnderlyingClient()
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, lead.FieldCreatedAt, createdAt.UTC().Format(time.RFC3339Nano))
		pipe.HSet(ctx, key, values...)
		pipe.SAdd(ctx, s.client.Key(leadIndexKey), l.DocID)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLeadStoreFailed, "failed to save lead").WithDetail("docId=" + l.DocID)
	}

	s.logger.Debug("lead saved", logging.String("doc_id", l.DocID), logging.Int("fields", len(l.Fields)))
	return s.Get(ctx, l.DocID)
}

func (s *LeadStore) Get(ctx context.Context, docID string) (*lead.Lead, error) {
	h, err := s.client.GetUnderlyingClient().HGetAll(ctx, s.leadKey(docID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLeadStoreFailed, "failed to read lead").WithDetail("docId=" + docID)
	}
	if len(h) == 0 {
		return nil, errors.New(errors.ErrCodeLeadNotFound, "lead not found").WithDetail("docId=" + docID)
	}
	return fromHash(docID, h), nil
}

// List returns every indexed lead, ordered by docId.  Ids whose hash has
// vanished are skipped.
func (s *LeadStore) List(ctx context.Context) ([]*lead.Lead, error) {
	rdb := s.client.GetUnderlyingClient()
	ids, err := rdb.SMembers(ctx, s.client.Key(leadIndexKey)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLeadStoreFailed, "failed to list lead ids")
	}
	sort.Strings(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.leadKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLeadStoreFailed, "failed to read leads")
	}

	out := make([]*lead.Lead, 0, len(ids))
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			s.logger.Warn("indexed lead has no hash", logging.String("doc_id", ids[i]))
			continue
		}
		out = append(out, fromHash(ids[i], h))
	}
	return out, nil
}

func fromHash(docID string, h map[string]string) *lead.Lead {
	l := &lead.Lead{DocID: docID, Fields: make(map[string]string, len(h))}
	for k, v := range h {
		switch k {
		case lead.FieldDocID:
		case lead.FieldCreatedAt:
			l.CreatedAt = parseTime(v)
		case lead.FieldLastUpdated:
			l.LastUpdated = parseTime(v)
		default:
			l.Fields[k] = v
		}
	}
	return l
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
