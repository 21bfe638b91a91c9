// Package log provides structured logging for go-posture.
// It wraps slog with sensible defaults for production use.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Options controls logger construction.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to info.
	Level string

	// File, when set, receives a copy of every record with size based
	// rotation.
	File string
}

// Init initializes the global logger with the specified level.
// Valid levels: "debug", "info", "warn", "error"
func Init(level string) {
	InitWithOptions(Options{Level: level})
}

// InitWithOptions initializes the global logger. Only the first call
// has an effect.
func InitWithOptions(o Options) {
	once.Do(func() {
		opts := &slog.HandlerOptions{
			Level: ParseLevel(o.Level),
		}

		var w io.Writer = os.Stdout
		if o.File != "" {
			w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   o.File,
				LocalTime:  true,
				Compress:   true,
				MaxSize:    20, // MB
				MaxAge:     7,  // days
				MaxBackups: 3,
			})
		}

		logger = New(w, opts)
		slog.SetDefault(logger)
	})
}

// New builds a logger writing to w. JSON is used in production,
// text in development.
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
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

// L returns the global logger instance.
func L() *slog.Logger {
	if logger == nil {
		Init("info")
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
