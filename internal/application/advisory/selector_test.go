package advisory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/netellus-advisor/pkg/errors"
)

func newTestSelector(store *fakeStore, metrics Metrics) *Selector {
	return NewSelector(store, testOptions(), logging.NewNopLogger(), metrics)
}

func TestSelect_ExactHitSkipsPrefix(t *testing.T) {
	store := newFakeStore()
	store.exact = casestudy.Found([]casestudy.FieldMap{doc("Textile", "Boiler", "Heat", 10)})

	sel, err := newTestSelector(store, nil).Select(context.Background(), "  Textile ")
	require.NoError(t, err)

	assert.Equal(t, MethodExact, sel.Method)
	assert.Equal(t, "Textile", sel.Input)
	assert.Len(t, sel.Records, 1)
	assert.Equal(t, []string{`exact cases.industry="Textile" limit=500`}, store.calls)
}

func TestSelect_EmptyExactFallsBackWithContainmentFilter(t *testing.T) {
	store := newFakeStore()
	store.prefix = casestudy.Found([]casestudy.FieldMap{
		doc("Textile dyeing", "Boiler", "Heat", 10),
		doc("Tea processing", "Dryer", "Heat", 10),
		doc("Tex", "Chiller", "VSD", 10),
		doc("", "Lighting", "LED", 10),
	})
	metrics := &recordingMetrics{}

	sel, err := newTestSelector(store, metrics).Select(context.Background(), "Textile")
	require.NoError(t, err)

	assert.Equal(t, MethodFuzzy, sel.Method)
	assert.Equal(t, "Te", sel.Prefix)
	require.Len(t, sel.Records, 2)
	assert.Equal(t, "Textile dyeing", sel.Records[0]["industry"])
	assert.Equal(t, "Tex", sel.Records[1]["industry"])
	assert.Equal(t, []string{"exact_empty"}, metrics.fallbacks)
	assert.Equal(t, `prefix cases.industry^"Te" limit=30`, store.calls[1])
}

func TestSelect_ExactErrorIsSwallowed(t *testing.T) {
	store := newFakeStore()
	store.exact = casestudy.Failed(errors.New("timeout"))
	store.prefix = casestudy.Found([]casestudy.FieldMap{doc("Textile", "Boiler", "Heat", 10)})
	metrics := &recordingMetrics{}

	sel, err := newTestSelector(store, metrics).Select(context.Background(), "Textile")
	require.NoError(t, err)

	assert.Equal(t, MethodFuzzy, sel.Method)
	assert.Len(t, sel.Records, 1)
	assert.Equal(t, []string{"exact_error"}, metrics.fallbacks)
}

func TestSelect_PrefixErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.prefix = casestudy.Failed(errors.New("connection refused"))

	_, err := newTestSelector(store, nil).Select(context.Background(), "Textile")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCaseQueryFailed))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSelect_NoResults(t *testing.T) {
	store := newFakeStore()

	sel, err := newTestSelector(store, nil).Select(context.Background(), "Textile")
	require.NoError(t, err)
	assert.Equal(t, MethodFuzzy, sel.Method)
	assert.Empty(t, sel.Records)
	assert.Len(t, store.calls, 2)
}

func TestSelect_ShortInputUsesWholeString(t *testing.T) {
	for _, in := range []string{"T", ""} {
		store := newFakeStore()
		sel, err := newTestSelector(store, nil).Select(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, in, sel.Prefix)
	}
}

func TestLeadingRunes_MultiByte(t *testing.T) {
	assert.Equal(t, "紡織", leadingRunes("紡織業", 2))
	assert.Equal(t, "紡", leadingRunes("紡", 2))
	assert.Equal(t, "", leadingRunes("", 2))
}

func TestRelatedIndustry(t *testing.T) {
	assert.True(t, relatedIndustry("紡織業", "紡織"))
	assert.True(t, relatedIndustry("紡織", "紡織染整業"))
	assert.False(t, relatedIndustry("紡織業", "紡紗"))
	assert.False(t, relatedIndustry("紡織業", ""))
	// Full-width letters fold to ASCII.
	assert.True(t, relatedIndustry("ＰＣＢ", "PCB manufacturing"))
}
