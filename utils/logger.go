package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured, leveled logging throughout the application.
// It embeds a zerolog.Logger so callers chain fields and finish with Msg:
//
//	logger.Info().Int("rows", n).Msg("[pipeline] done")
type Logger struct {
	zerolog.Logger
}

// LogConfig controls level and output format of a Logger.
type LogConfig struct {
	Level  string // trace, debug, info, warn, error
	Format string // json or console
	Output io.Writer
}

// NewLogger creates a console Logger writing to stdout at info level.
func NewLogger() *Logger {
	return NewLoggerWithConfig(LogConfig{Level: "info", Format: "console"})
}

// NewLoggerWithConfig creates a Logger from the given configuration.
func NewLoggerWithConfig(cfg LogConfig) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	return &Logger{Logger: l}
}

// NewTestLogger creates a JSON Logger writing to w, useful for capturing output in tests.
func NewTestLogger(w io.Writer) *Logger {
	return &Logger{Logger: zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With().Str("component", name).Logger()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
