// Package log provides structured logging for the rover firmware.
// Handlers write to stdout: JSON on the rover itself (systemd-journald
// captures it), human-readable text on a dev workstation.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger   *slog.Logger
	levelVar slog.LevelVar
	once     sync.Once
)

// Init sets up the global logger at the given level. Later calls are
// no-ops; use SetLevel to change verbosity at runtime.
func Init(level string) {
	once.Do(func() {
		levelVar.Set(parseLevel(level))
		opts := &slog.HandlerOptions{Level: &levelVar}

		var h slog.Handler
		if os.Getenv("ROVER_ENV") == "production" {
			h = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			h = slog.NewTextHandler(os.Stdout, opts)
		}

		logger = slog.New(h)
		slog.SetDefault(logger)
	})
}

// SetLevel changes the verbosity of the already-initialized logger.
func SetLevel(level string) {
	levelVar.Set(parseLevel(level))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the global logger, initializing it at info level if nothing
// called Init yet.
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// With returns a logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }
