package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug", "json"))
	assert.True(t, Logger().Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn", "console"))
	assert.False(t, Logger().Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger().Desugar().Core().Enabled(zapcore.WarnLevel))
}

func TestHelpersWriteKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	Debug("d", "k", 1)
	Info("i")
	Warn("w", "address", "place/start")
	Error("e")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "place/start", entries[2].ContextMap()["address"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["k"])
}
