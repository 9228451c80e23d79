package errors

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogHandler is an ErrorHandler that writes errors to a zerolog logger.
type LogHandler struct {
	Logger zerolog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// NewLogHandler returns a LogHandler writing console output to stderr.
func NewLogHandler(verbose bool) *LogHandler {
	return &LogHandler{
		Logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger(),
		Verbose: verbose,
	}
}

// HandleError logs an ArborError.
func (h *LogHandler) HandleError(err *ArborError) {
	if err == nil {
		return
	}
	event := h.Logger.Error().
		Str("op", err.Op).
		Stringer("kind", err.Kind).
		Err(err.Err)
	if err.Widget != "" {
		event = event.Str("widget", err.Widget)
	}
	if h.Verbose && err.StackTrace != "" {
		event = event.Str("stack", err.StackTrace)
	}
	event.Msg("arbor error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	event := h.Logger.Error().Interface("value", err.Value).Stringer("kind", err.Kind)
	if err.Op != "" {
		event = event.Str("op", err.Op)
	}
	if err.Widget != "" {
		event = event.Str("widget", err.Widget)
	}
	if h.Verbose && err.StackTrace != "" {
		event = event.Str("stack", err.StackTrace)
	}
	event.Msg("arbor panic")
}
