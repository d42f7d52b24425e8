package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelRoundTrip(t *testing.T) {
	for _, level := range []int{TraceLevel, DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel} {
		parsed, err := LevelFromString(LogLevelToString(level))
		require.Nil(t, err)
		require.Equal(t, level, parsed)
	}
	_, err := LevelFromString("loud")
	require.NotNil(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(WarnLevel)
	require.Nil(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(TraceLevel)
	require.Nil(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
