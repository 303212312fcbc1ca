package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLoggerEnvWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	log, err := NewLogger("error")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log, err := NewLogger("chatty")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
