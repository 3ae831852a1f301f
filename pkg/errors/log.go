package errors

import (
	"context"
	"log/slog"
)

// LogHandler is an ErrorHandler that writes reports to a slog.Logger.
// The zero value logs through slog.Default().
type LogHandler struct {
	// Logger receives the reports. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose attaches stack traces to each record.
	Verbose bool
}

// NewLogHandler returns a LogHandler writing to logger.
func NewLogHandler(logger *slog.Logger, verbose bool) *LogHandler {
	return &LogHandler{Logger: logger, Verbose: verbose}
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs an Error at error level.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
		slog.Any("error", err.Err),
	}
	if err.Name != "" {
		attrs = append(attrs, slog.String("observable", err.Name))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "rx error", attrs...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("kind", err.Kind.String()),
		slog.Any("value", err.Value),
	}
	if err.Op != "" {
		attrs = append(attrs, slog.String("op", err.Op))
	}
	if err.Name != "" {
		attrs = append(attrs, slog.String("observable", err.Name))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "rx panic", attrs...)
}
