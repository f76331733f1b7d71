// Package log provides the logging capability injected into the emulator core.
// Components default to a null logger, so nothing is printed unless a caller
// asks for it.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the logging interface used throughout the emulator.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type logger struct {
	h     *slog.Logger
	attrs []any
}

// New returns a Logger writing text records to w at or above level.
func New(w io.Writer, level slog.Level) Logger {
	return &logger{
		h: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// With returns a Logger that attaches the given key/value pairs to every record.
// Loggers that were not created by New are returned unchanged.
func With(l Logger, args ...any) Logger {
	base, ok := l.(*logger)
	if !ok {
		return l
	}
	return &logger{h: base.h.With(args...)}
}

func (l *logger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l *logger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l *logger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l *logger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.h.Enabled(ctx, level) {
		return
	}
	l.h.Log(ctx, level, fmt.Sprintf(format, args...))
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
