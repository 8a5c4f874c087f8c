// Package logger provides leveled logging for the Insight CLI.
// Warnings and errors are always written. When verbose mode is enabled via
// the --verbose flag, info and debug messages are written too, so users can
// follow the embedding and ingestion pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	log               = newLogger(output, false, false)
)

func newLogger(w io.Writer, verbose, asJSON bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{
			Out:             w,
			NoColor:         true,
			PartsExclude:    []string{zerolog.TimestampFieldName},
			FormatLevel:     formatLevel,
			FormatTimestamp: func(any) string { return "" },
		}
		return zerolog.New(w).Level(level)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func formatLevel(v any) string {
	s, _ := v.(string)
	switch s {
	case zerolog.LevelDebugValue:
		return "[DEBUG]"
	case zerolog.LevelInfoValue:
		return "[INFO]"
	case zerolog.LevelWarnValue:
		return "[WARN]"
	case zerolog.LevelErrorValue:
		return "[ERROR]"
	default:
		return "[" + s + "]"
	}
}

func rebuild() {
	log = newLogger(output, verbose, jsonOut)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between console lines and JSON records.
// Long-running servers use JSON.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = v
	rebuild()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// Get returns the underlying zerolog logger for structured fields.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msgf(format, args...)
}

// Section logs a pipeline stage header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose && !jsonOut {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
		return
	}
	log.Debug().Str("section", name).Send()
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msgf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(err error, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Err(err).Msgf(format, args...)
}
