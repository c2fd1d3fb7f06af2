package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/netellus-advisor/internal/domain/lead"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// memoryRepo keeps leads in a map and mimics the createdAt-first-write rule.
type memoryRepo struct {
	mu      sync.Mutex
	leads   map[string]*lead.Lead
	extra   []*lead.Lead
	saveErr error
	listErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{leads: map[string]*lead.Lead{}}
}

func (r *memoryRepo) Save(_ context.Context, l *lead.Lead) (*lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if cur, ok := r.leads[l.DocID]; ok {
		cur.Merge(l)
		cp := *cur
		return &cp, nil
	}
	cp := *l
	r.leads[l.DocID] = &cp
	out := cp
	return &out, nil
}

func (r *memoryRepo) Get(_ context.Context, docID string) (*lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[docID]
	if !ok {
		return nil, errors.New(errors.ErrCodeLeadNotFound, "lead not found").WithDetail("docId=" + docID)
	}
	cp := *l
	return &cp, nil
}

func (r *memoryRepo) List(context.Context) ([]*lead.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*lead.Lead, 0, len(r.leads)+len(r.extra))
	for _, l := range r.leads {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return append(out, r.extra...), nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishLeadCaptured(ctx context.Context, l *lead.Lead) error {
	return m.Called(ctx, l).Error(0)
}

type mockSheet struct{ mock.Mock }

func (m *mockSheet) ReadDocIDRows(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).(map[string]int)
	return rows, args.Error(1)
}

func (m *mockSheet) UpdateRow(ctx context.Context, row int, values []interface{}) error {
	return m.Called(ctx, row, values).Error(0)
}

func (m *mockSheet) AppendRow(ctx context.Context, values []interface{}) error {
	return m.Called(ctx, values).Error(0)
}

type recordingMetrics struct {
	saved  []string
	events []error
	syncs  [][2]int
}

func (r *recordingMetrics) RecordLeadSaved(status string)       { r.saved = append(r.saved, status) }
func (r *recordingMetrics) RecordLeadEvent(_ string, err error) { r.events = append(r.events, err) }
func (r *recordingMetrics) RecordLeadSync(_ string, u, a int, _ time.Time) {
	r.syncs = append(r.syncs, [2]int{u, a})
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
