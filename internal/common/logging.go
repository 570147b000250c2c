// Package common provides shared utilities for invest-reporter.
package common

import (
    "io"
    "os"
    "time"

    "github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger so packages depend on one logging type.
type Logger struct {
    zerolog.Logger
}

// NewLogger creates a console logger at the given level.
// Unknown levels fall back to info.
func NewLogger(level string) *Logger {
    output := zerolog.ConsoleWriter{
        Out:        os.Stderr,
        TimeFormat: time.RFC3339,
    }

    logger := zerolog.New(output).
        Level(parseLevel(level)).
        With().
        Timestamp().
        Logger()

    return &Logger{Logger: logger}
}

// NewLoggerWithOutput creates a logger writing to a specific output.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
    logger := zerolog.New(w).
        Level(parseLevel(level)).
        With().
        Timestamp().
        Logger()

    return &Logger{Logger: logger}
}

// NewSilentLogger creates a logger that discards all output. Used as the
// default when a component is constructed without WithLogger.
func NewSilentLogger() *Logger {
    logger := zerolog.New(io.Discard)
    return &Logger{Logger: logger}
}

func parseLevel(level string) zerolog.Level {
    switch level {
    case "debug":
        return zerolog.DebugLevel
    case "info":
        return zerolog.InfoLevel
    case "warn":
        return zerolog.WarnLevel
    case "error":
        return zerolog.ErrorLevel
    default:
        return zerolog.InfoLevel
    }
}
