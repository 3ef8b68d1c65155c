// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phsym/console-slog"
)

// Logger wraps an slog.Logger whose level can change at runtime.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
}

// ParseLevel maps debug|info|warn|error to an slog level. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
}

// New builds a console (default) or JSON logger writing to w.
func New(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := &Logger{level: &slog.LevelVar{}}
	l.level.Set(lvl)

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: l.level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "ts"
				}
				return a
			},
		})
	case "", "console", "text":
		handler = console.NewHandler(w, &console.HandlerOptions{Level: l.level})
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	l.Logger = slog.New(handler)
	return l, nil
}

// SetLevel changes the level of this logger and everything derived from it.
func (l *Logger) SetLevel(level slog.Level) { l.level.Set(level) }

// Level reports the current level.
func (l *Logger) Level() slog.Level { return l.level.Level() }
