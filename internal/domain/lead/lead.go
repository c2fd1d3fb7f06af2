// Package lead models prospective-customer profiles captured by the advisory
// front end.
package lead

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// Well-known field keys.  Any other string key is stored verbatim.
const (
	FieldDocID           = "docId"
	FieldCreatedAt       = "createdAt"
	FieldLastUpdated     = "lastUpdated"
	FieldIndustry        = "industry"
	FieldPhone           = "phone"
	FieldTaxID           = "taxId"
	FieldBaselineTotal   = "baseline_total"
	FieldBaselineUnit    = "baseline_unit"
	FieldReductionTarget = "reduction_target"
	FieldReductionType   = "reduction_type"
	FieldEmail           = "email"
)

var docIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Lead is one prospect profile.  Fields never contain the reserved keys
// docId, createdAt or lastUpdated; those live on the struct.
type Lead struct {
	DocID       string            `json:"docId"`
	Fields      map[string]string `json:"fields"`
	CreatedAt   time.Time         `json:"createdAt"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

// New builds a Lead from submitted form values.  docId is taken from fields
// or, when absent, from newID.  Both timestamps are set to now; stores keep
// the first CreatedAt they see.
func New(fields map[string]string, now time.Time, newID func() string) (*Lead, error) {
	l := &Lead{Fields: make(map[string]string, len(fields)), CreatedAt: now, LastUpdated: now}
	for k, v := range fields {
		k = strings.TrimSpace(k)
		switch k {
		case "", FieldCreatedAt, FieldLastUpdated:
			continue
		case FieldDocID:
			l.DocID = strings.TrimSpace(v)
			continue
		}
		l.Fields[k] = strings.TrimSpace(v)
	}

	if len(l.Fields) == 0 {
		return nil, errors.New(errors.ErrCodeLeadInvalid, "lead has no fields")
	}
	if l.DocID == "" {
		l.DocID = newID()
	}
	if !docIDPattern.MatchString(l.DocID) {
		return nil, errors.New(errors.ErrCodeLeadInvalid, "docId must be 1-128 letters, digits, '-' or '_'").
			WithDetail("docId=" + l.DocID)
	}
	if email := l.Fields[FieldEmail]; email != "" && !strings.Contains(email, "@") {
		return nil, errors.New(errors.ErrCodeLeadInvalid, "email is malformed").WithDetail("email=" + email)
	}
	return l, nil
}

// Get returns a field value, including the reserved keys.
func (l *Lead) Get(key string) string {
	switch key {
	case FieldDocID:
		return l.DocID
	case FieldCreatedAt:
		return formatTime(l.CreatedAt)
	case FieldLastUpdated:
		return formatTime(l.LastUpdated)
	}
	return l.Fields[key]
}

// Merge folds a newer entry for the same docId into l.  Newer field values
// overwrite older ones; CreatedAt is only taken when l has none.
func (l *Lead) Merge(newer *Lead) {
	if newer == nil {
		return
	}
	if l.Fields == nil {
		l.Fields = make(map[string]string, len(newer.Fields))
	}
	for k, v := range newer.Fields {
		l.Fields[k] = v
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = newer.CreatedAt
	}
	if newer.LastUpdated.After(l.LastUpdated) {
		l.LastUpdated = newer.LastUpdated
	}
}

// MergeByDocID collapses entries sharing a docId, in input order, and drops
// entries without one.  The result is sorted by CreatedAt, then docId.
func MergeByDocID(entries []*Lead) []*Lead {
	byID := make(map[string]*Lead, len(entries))
	for _, e := range entries {
		if e == nil || e.DocID == "" {
			continue
		}
		if cur, ok := byID[e.DocID]; ok {
			cur.Merge(e)
			continue
		}
		cp := *e
		cp.Fields = make(map[string]string, len(e.Fields))
		for k, v := range e.Fields {
			cp.Fields[k] = v
		}
		byID[e.DocID] = &cp
	}

	out := make([]*Lead, 0, len(byID))
	for _, l := range byID {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Repository persists leads keyed by docId.
type Repository interface {
	// Save upserts l: fields overwrite, CreatedAt is kept from the first save.
	// It returns the stored state after the write.
	Save(ctx context.Context, l *Lead) (*Lead, error)

	// Get returns the lead or an ErrCodeLeadNotFound error.
	Get(ctx context.Context, docID string) (*Lead, error)

	// List returns every stored lead.
	List(ctx context.Context) ([]*Lead, error)
}
