package system

import (
	"go.uber.org/zap"
)

// NewTestLogger returns a sugared development logger without automatic
// stacktraces, for tests that log through a SugaredLogger.
func NewTestLogger() *zap.SugaredLogger {
	return NewTestZapLogger().Sugar()
}

// NewTestZapLogger is the *zap.Logger form of NewTestLogger. Debug output is
// kept so failing tests show the auth and request trail.
func NewTestZapLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
