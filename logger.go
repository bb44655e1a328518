package geoknn

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geoknn-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewJSONLoggerTo(os.Stderr, level)
}

// NewJSONLoggerTo creates a JSON Logger writing to w.
func NewJSONLoggerTo(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", name),
	}
}

// WithPartition adds a partition field to the logger.
func (l *Logger) WithPartition(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("partition", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, partitions, results int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"partitions", partitions,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"partitions", partitions,
			"results", results,
			"duration", d,
		)
	}
}

// LogOpen logs opening a dataset.
func (l *Logger) LogOpen(ctx context.Context, dataset string, partitions int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open dataset failed",
			"dataset", dataset,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset opened",
			"dataset", dataset,
			"partitions", partitions,
		)
	}
}

// LogWrite logs writing a dataset.
func (l *Logger) LogWrite(ctx context.Context, dataset string, partitions, points int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write dataset failed",
			"dataset", dataset,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset written",
			"dataset", dataset,
			"partitions", partitions,
			"points", points,
		)
	}
}
