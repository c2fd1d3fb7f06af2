package lead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/pkg/errors"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func fixedID() string { return "generated-id" }

func TestNew_UsesSubmittedDocID(t *testing.T) {
	l, err := New(map[string]string{"docId": "abc_123", "industry": " Textile ", "createdAt": "ignored"}, t0, fixedID)
	require.NoError(t, err)

	assert.Equal(t, "abc_123", l.DocID)
	assert.Equal(t, "Textile", l.Fields[FieldIndustry])
	assert.NotContains(t, l.Fields, FieldCreatedAt)
	assert.NotContains(t, l.Fields, FieldDocID)
	assert.Equal(t, t0, l.CreatedAt)
	assert.Equal(t, t0, l.LastUpdated)
}

func TestNew_GeneratesDocID(t *testing.T) {
	l, err := New(map[string]string{"phone": "0912"}, t0, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "generated-id", l.DocID)
}

func TestNew_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"no fields":     {"docId": "abc"},
		"bad doc id":    {"docId": "a b", "phone": "1"},
		"bad email":     {"email": "nobody"},
		"reserved only": {"createdAt": "x", "lastUpdated": "y"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(fields, t0, fixedID)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeLeadInvalid))
		})
	}
}

func TestGet_ReservedKeys(t *testing.T) {
	l := &Lead{DocID: "d1", Fields: map[string]string{"email": "a@b.c"}, CreatedAt: t0}
	assert.Equal(t, "d1", l.Get(FieldDocID))
	assert.Equal(t, "2026-03-01T08:00:00Z", l.Get(FieldCreatedAt))
	assert.Equal(t, "", l.Get(FieldLastUpdated))
	assert.Equal(t, "a@b.c", l.Get(FieldEmail))
	assert.Equal(t, "", l.Get("missing"))
}

func TestMerge_NewerOverwritesExceptCreatedAt(t *testing.T) {
	older := &Lead{DocID: "d1", Fields: map[string]string{"phone": "1", "industry": "Textile"}, CreatedAt: t0, LastUpdated: t0}
	newer := &Lead{DocID: "d1", Fields: map[string]string{"phone": "2", "email": "x@y.z"}, CreatedAt: t0.Add(time.Hour), LastUpdated: t0.Add(time.Hour)}

	older.Merge(newer)

	assert.Equal(t, "2", older.Fields["phone"])
	assert.Equal(t, "Textile", older.Fields["industry"])
	assert.Equal(t, "x@y.z", older.Fields["email"])
	assert.Equal(t, t0, older.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), older.LastUpdated)
}

func TestMergeByDocID(t *testing.T) {
	entries := []*Lead{
		{DocID: "b", Fields: map[string]string{"phone": "1"}, CreatedAt: t0.Add(time.Minute)},
		{DocID: "", Fields: map[string]string{"phone": "orphan"}},
		{DocID: "a", Fields: map[string]string{"phone": "2"}, CreatedAt: t0},
		{DocID: "b", Fields: map[string]string{"phone": "3"}, CreatedAt: t0.Add(time.Hour)},
		nil,
	}

	merged := MergeByDocID(entries)

	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].DocID)
	assert.Equal(t, "b", merged[1].DocID)
	assert.Equal(t, "3", merged[1].Fields["phone"])
	assert.Equal(t, t0.Add(time.Minute), merged[1].CreatedAt)
	// Inputs are not mutated.
	assert.Equal(t, "1", entries[0].Fields["phone"])
}
