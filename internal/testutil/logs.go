package testutil

import (
	"testing"

	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ObserveLogs installs a debug-level recording logger as the global logger
// until the test ends.
func ObserveLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetGlobal(logger.NewWithZap(zap.New(core)))
	t.Cleanup(func() { logger.SetGlobal(nil) })
	return logs
}
