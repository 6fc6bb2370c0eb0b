package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"certforge/internal/logger"
)

func TestNew_WritesToConfiguredPath(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	l.With(logger.String("component", "test")).Debug("debug message", logger.Int("n", 1))
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)
	assert.Same(t, nop, logger.FromContext(ctx))
}

func TestFromContext_NoLoggerIsUsable(t *testing.T) {
	t.Parallel()

	l := logger.FromContext(context.Background())
	require.NotNil(t, l)
	l.Warn("still usable")
}

func TestFromZap_KeepsFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.FromZap(zap.New(core)).With(logger.String("run", "r1"))
	l.Debug("dropped")
	l.Warn("kept", logger.Int("n", 2))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "r1", entry.ContextMap()["run"])
	assert.EqualValues(t, 2, entry.ContextMap()["n"])
}
