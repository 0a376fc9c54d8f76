// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logger provides a context-aware logger built on [slog].
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

type ctxKey struct{}

// Logf is a printf-style logging function.
type Logf func(format string, args ...any)

// Write implements [io.Writer], so a Logf can back a [log.Logger].
func (f Logf) Write(p []byte) (int, error) {
	f("%s", bytes.TrimSuffix(p, []byte("\n")))
	return len(p), nil
}

// fanout sends each record to every attached handler that accepts its level.
type fanout struct {
	mu       sync.RWMutex
	handlers []slog.Handler
}

func (h *fanout) snapshot() []slog.Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.handlers)
}

func (h *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.snapshot() {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, hh := range h.snapshot() {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(hh slog.Handler) slog.Handler { return hh.WithAttrs(attrs) })
}

func (h *fanout) WithGroup(name string) slog.Handler {
	return h.derive(func(hh slog.Handler) slog.Handler { return hh.WithGroup(name) })
}

func (h *fanout) derive(f func(slog.Handler) slog.Handler) *fanout {
	hs := h.snapshot()
	for i := range hs {
		hs[i] = f(hs[i])
	}
	return &fanout{handlers: hs}
}

// Logger encapsulates an [slog.Logger] and allows attaching and detaching
// [slog.Handler] values at runtime.
//
// Level is shared by the handlers created for the Logger, so changing it
// affects all of them at once.
type Logger struct {
	*slog.Logger
	Level *slog.LevelVar

	fanout *fanout
}

// New creates a new Logger without handlers.
// Its LevelVar is initialized to LevelInfo if level is nil.
func New(level *slog.LevelVar) *Logger {
	if level == nil {
		level = new(slog.LevelVar)
		level.Set(slog.LevelInfo)
	}
	f := new(fanout)
	return &Logger{
		Logger: slog.New(f),
		Level:  level,
		fanout: f,
	}
}

// Attach attaches a handler to the logger.
func (l *Logger) Attach(h slog.Handler) {
	l.fanout.mu.Lock()
	defer l.fanout.mu.Unlock()
	l.fanout.handlers = append(l.fanout.handlers, h)
}

// Detach detaches a handler from the logger.
func (l *Logger) Detach(h slog.Handler) {
	l.fanout.mu.Lock()
	defer l.fanout.mu.Unlock()
	l.fanout.handlers = slices.DeleteFunc(l.fanout.handlers, func(hh slog.Handler) bool { return hh == h })
}

// NewConsoleHandler returns a human-friendly [slog.Handler] writing to w.
// Output is colored only when w is a terminal.
func NewConsoleHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var defaultLogger = New(nil)

// Put returns a new context with the provided [Logger].
func Put(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Get retrieves the [Logger] from the context.
//
// If the context has no [Logger], it returns a default [Logger] that discards all
// messages.
func Get(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// IsDefault reports whether l is the default [Logger].
func IsDefault(l *Logger) bool { return l == defaultLogger }

// Printf returns a [Logf] that logs formatted messages from ctx's [Logger]
// at the given level.
func Printf(ctx context.Context, level slog.Level) Logf {
	return func(format string, args ...any) {
		Get(ctx).Log(ctx, level, fmt.Sprintf(format, args...))
	}
}

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs an info message.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs an error message.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	Get(ctx).LogAttrs(ctx, slog.LevelError, msg, attrs...)
}
