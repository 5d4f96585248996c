package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled reports false
// so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr holds the active engine logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by every engine package.
// The engine is silent until a logger is set. Passing nil restores the silent default.
//
// Levels used by the engine:
//   - [slog.LevelDebug]: per-input diagnostics (flicker toggles, camera resets)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, engine started, profiler stats)
//   - [slog.LevelWarn]: recoverable GPU issues (surface reconfiguration)
//
// Parameters:
//   - l: the logger to install, or nil for the silent default
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger. Safe for concurrent use.
//
// Returns:
//   - *slog.Logger: the active logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
