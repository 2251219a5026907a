package logger

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger with a console writer on os.Stderr.
// It ensures that the logger is initialized only once.
func Init() {
	once.Do(func() {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		defaultLogger = zerolog.New(writer).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	})
}

// Get returns the initialized default logger.
func Get() zerolog.Logger {
	Init()
	return defaultLogger
}

// WithRunID returns a logger tagged with the id of the current pipeline run.
func WithRunID(runID string) zerolog.Logger {
	return Get().With().Str("run_id", runID).Logger()
}

// Info logs an informational message using the default logger.
func Info(msg string) {
	l := Get()
	l.Info().Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string) {
	l := Get()
	l.Warn().Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error) {
	l := Get()
	l.Error().Err(err).Msg(msg)
}

// Debug logs a debug message using the default logger.
func Debug(msg string) {
	l := Get()
	l.Debug().Msg(msg)
}
