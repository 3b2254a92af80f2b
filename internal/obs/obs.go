// Package obs provides the process-wide structured logging facade used by
// every package in this module, in place of ad-hoc fmt.Printf diagnostics.
package obs

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger = l.Sugar()
}

// L returns the current process-wide logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the process-wide logger. Used by tests to install a
// development logger or a no-op logger.
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Sync flushes any buffered log entries. Callers should defer this at
// process exit; errors are intentionally discarded since most sync targets
// (e.g. stderr on Linux) routinely return ENOTTY and are not actionable.
func Sync() {
	_ = L().Sync()
}
