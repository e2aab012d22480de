package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger()
	require.NotNil(t, logger)

	logger.Info("test message")
	logger.Infow("test message with fields", "key", "value")
}

func TestNewTestZapLogger(t *testing.T) {
	logger := NewTestZapLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "debug level is enabled")

	logger.Info("test message")
	logger.Sugar().Infow("sugared test message", "key", "value")
}
