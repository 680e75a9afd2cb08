package soundio

import (
	"log/slog"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the package logger used by contexts created without
// WithLogger. A nil logger restores slog.Default().
func SetLogger(l *slog.Logger) {
	defaultLogger.Store(l)
}

func packageLogger() *slog.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}
