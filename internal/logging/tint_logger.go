package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// TintLogger adapts a colorized slog handler to the retrydb.Logger
// interface. It is the default logger for interactive CLI use; ConsoleLogger
// remains the plain-text alternative for pipes and CI logs.
type TintLogger struct {
	logger  *slog.Logger
	verbose bool
}

// NewTintLogger creates a TintLogger writing to w. If verbose is true,
// Verbose() calls are emitted at debug level; otherwise they are no-ops.
func NewTintLogger(w io.Writer, verbose bool) *TintLogger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})

	return &TintLogger{
		logger:  slog.New(handler),
		verbose: verbose,
	}
}

// Verbose logs detailed diagnostic information at debug level.
func (l *TintLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Info logs informational messages about normal operations.
func (l *TintLogger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Warn logs recoverable conditions, such as an attempt being retried.
func (l *TintLogger) Warn(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Error logs error messages.
func (l *TintLogger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
