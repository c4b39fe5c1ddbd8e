package ggsurface

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/ggsurface/gpu"
	"github.com/gogpu/ggsurface/text"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// slogger returns the active logger. Backends registered from init may ask
// for it before the default is stored.
func slogger() *slog.Logger {
	if l := loggerPtr.Load(); l != nil {
		return l
	}
	return newNopLogger()
}

// SetLogger configures the logger for ggsurface and its sub-packages
// (text, gpu) and for every registered backend that accepts a logger.
// By default ggsurface produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by ggsurface:
//   - [slog.LevelDebug]: per-frame diagnostics (pool growth, atlas uploads)
//   - [slog.LevelInfo]: lifecycle events (surface built, adapter selected)
//   - [slog.LevelWarn]: skipped frames, unreadable fonts, backend fallback
//   - [slog.LevelError]: panics caught by StopUnwind
//
// Example:
//
//	ggsurface.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
//
// The desktop event loop in platform/glfw has its own SetLogger; programs
// using it set both.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	text.SetLogger(l)
	gpu.SetLogger(l)

	for _, e := range globalRegistry.entries() {
		propagateLogger(e.Factory, l)
	}
}

// Logger returns the current logger used by ggsurface.
func Logger() *slog.Logger {
	return slogger()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(f PresenterFactory, l *slog.Logger) {
	if ls, ok := f.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
