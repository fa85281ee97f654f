package errors

import (
	"log/slog"

	"github.com/go-drift/reconcile/pkg/logging"
)

// LogHandler is an ErrorHandler that writes errors to a logging.Logger.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Logger receives the records. Nil means a stderr logger at info level.
	Logger logging.Logger
}

func (h *LogHandler) logger() logging.Logger {
	if h.Logger == nil {
		h.Logger = logging.NewDefaultLogger(slog.LevelInfo)
	}
	return h.Logger
}

// HandleError logs a SchedulerError.
func (h *LogHandler) HandleError(err *SchedulerError) {
	if err == nil {
		return
	}
	args := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.Component != "" {
		args = append(args, "component", err.Component)
	}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	h.logger().Error("error", args...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	args := []any{"value", err.Value, "kind", err.Kind.String()}
	if err.Op != "" {
		args = append(args, "op", err.Op)
	}
	if err.Component != "" {
		args = append(args, "component", err.Component)
	}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	h.logger().Error("panic", args...)
}
