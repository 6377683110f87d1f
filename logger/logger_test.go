package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerNopBeforeInitialize(t *testing.T) {
	// The package-level logger must be usable before Initialize is called
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() {
		Logger.Infow("pre-init message", FieldCount, 1)
	})
}

func TestInitialize(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		err := Initialize(false, VerbosityInfo)
		require.NoError(t, err)
		assert.False(t, JSONOutput)
		assert.NotPanics(t, func() {
			Logger.Named("graph.builder").Infow("built graph", FieldNodes, 4, FieldEdges, 4)
		})
	})

	t.Run("json output", func(t *testing.T) {
		err := Initialize(true, VerbosityDebug)
		require.NoError(t, err)
		assert.True(t, JSONOutput)
	})
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		expected  zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{3, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestShouldLogTrace(t *testing.T) {
	assert.False(t, ShouldLogTrace(0))
	assert.False(t, ShouldLogTrace(2))
	assert.True(t, ShouldLogTrace(3))
	assert.True(t, ShouldLogTrace(4))
}
