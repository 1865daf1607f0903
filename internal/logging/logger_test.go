package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestFieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("payment").With(String("attempt", "a1"))

	l.Warn("verification failed", Err(errors.New("boom")), Duration("elapsed", time.Second), Bool("granted", false))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "payment", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "a1", ctx["attempt"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, false, ctx["granted"])
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("ignored", Int("n", 1))
	assert.Equal(t, l, l.With(String("k", "v")).Named("x"))
}
