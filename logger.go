package svmcorpus

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with svmcorpus-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithPath adds a corpus path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithOffset adds a byte offset field to the logger.
func (l *Logger) WithOffset(offset int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("offset", offset),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogIterate logs one iteration pass, full or partial.
func (l *Logger) LogIterate(ctx context.Context, path string, docs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "corpus iteration failed",
			"path", path,
			"documents", docs,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "corpus iteration completed",
			"path", path,
			"documents", docs,
		)
	}
}

// LogFetch logs an offset-addressed document fetch.
func (l *Logger) LogFetch(ctx context.Context, path string, offset int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "document fetch failed",
			"path", path,
			"offset", offset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "document fetch completed",
			"path", path,
			"offset", offset,
		)
	}
}

// LogSave logs a corpus save operation.
func (l *Logger) LogSave(ctx context.Context, path string, docs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "corpus save failed",
			"path", path,
			"documents", docs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "corpus saved",
			"path", path,
			"documents", docs,
		)
	}
}
