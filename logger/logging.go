package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	enabled = true // flip to false to nuke logs
	logger  = newConsole(os.Stdout)
)

func newConsole(out io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func EnableLogging(b bool) {
	enabled = b
}

// SetOutput redirects logs, mostly for tests.
func SetOutput(out io.Writer) {
	logger = newConsole(out)
}

// SetLevel accepts zerolog level names ("debug", "info", "warn", "error").
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func Debug(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Debug().Msgf(msg, v...)
}

func Info(msg string, v ...interface{}) {
	if !enabled {
		return
	}

	logger.Info().Msgf(msg, v...)

}

func Warn(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Warn().Msgf(msg, v...)
}

func Error(msg string, v ...interface{}) {
	if !enabled {
		return
	}
	logger.Error().Msgf(msg, v...)
}
