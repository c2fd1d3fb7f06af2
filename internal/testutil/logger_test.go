package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/internal/testutil"
)

func TestRecordingLogger(t *testing.T) {
	logger := testutil.NewRecordingLogger()

	logger.Info("test info", logging.String("key", "value"))

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "test info", entries[0].Message)

	logger.Reset()
	assert.Empty(t, logger.Entries())

	logger.Error("test error")
	assert.True(t, logger.Has("error", "test error"))
	assert.False(t, logger.Has("info", "test info"))
}

func TestRecordingLogger_ChildrenShareBuffer(t *testing.T) {
	root := testutil.NewRecordingLogger()
	child := root.Named("sync").Named("lock").With(logging.String("doc_id", "d1"))

	child.Warn("busy", logging.Int("attempt", 2))

	e, ok := root.Find("warn", "busy")
	require.True(t, ok)
	assert.Equal(t, "sync.lock", e.Logger)
	v, ok := e.Field("doc_id")
	require.True(t, ok)
	assert.Equal(t, "d1", v)
	_, ok = e.Field("missing")
	assert.False(t, ok)
}
