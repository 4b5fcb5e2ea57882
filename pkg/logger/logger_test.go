package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewConsole(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "console", Development: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestFromContextAddsExportFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := ContextWithExport(context.Background(), "exp-1", "pgx")
	FromContext(ctx, base).Info("batch emitted", zap.Int("rows", 4))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "exp-1", fields["export_id"])
	assert.Equal(t, "pgx", fields["source"])
	assert.Equal(t, int64(4), fields["rows"])
	assert.NotContains(t, fields, "trace_id")
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Get()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	Info("hello")
	Debug("dropped")
	assert.Equal(t, 1, logs.Len())
}
