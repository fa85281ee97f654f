// Package logging provides the structured logger used by render roots.
package logging

import (
	"log/slog"
	"os"
)

// Logger is the logging surface the scheduler writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultLogger writes text records to stderr through log/slog.
type DefaultLogger struct {
	logger *slog.Logger
}

const prefix = "[reconcile] "

// NewDefaultLogger creates a stderr logger that drops records below level.
func NewDefaultLogger(level slog.Level) *DefaultLogger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	return &DefaultLogger{logger: logger}
}

// New wraps an existing slog.Logger.
func New(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DefaultLogger{logger: logger}
}

// Discard returns a logger that drops every record.
func Discard() *DefaultLogger {
	return New(nil)
}

func (d *DefaultLogger) Debug(msg string, args ...any) {
	d.logger.Debug(prefix+msg, args...)
}

func (d *DefaultLogger) Info(msg string, args ...any) {
	d.logger.Info(prefix+msg, args...)
}

func (d *DefaultLogger) Warn(msg string, args ...any) {
	d.logger.Warn(prefix+msg, args...)
}

func (d *DefaultLogger) Error(msg string, args ...any) {
	d.logger.Error(prefix+msg, args...)
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// slog level. Empty input yields slog.LevelInfo.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
