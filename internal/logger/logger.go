package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init configures the package logger. format is "console" or "json".
func Init(debug bool, format string) {
	InitWriter(os.Stderr, debug, format)
}

// InitWriter is Init with an explicit output, used by tests.
func InitWriter(w io.Writer, debug bool, format string) {
	level := zerolog.InfoLevel
	if debug || os.Getenv("DEBUG") == "true" {
		level = zerolog.DebugLevel
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// L returns the package logger for callers that want structured fields.
func L() *zerolog.Logger {
	return &Logger
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

func Info(msg string, args ...any) {
	Logger.Info().Fields(args).Msg(msg)
}

func Error(msg string, args ...any) {
	Logger.Error().Fields(args).Msg(msg)
}

func Debug(msg string, args ...any) {
	Logger.Debug().Fields(args).Msg(msg)
}

func Warn(msg string, args ...any) {
	Logger.Warn().Fields(args).Msg(msg)
}
