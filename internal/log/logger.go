package log

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Level returns Debug when verbose and Info otherwise. Progress messages are
// logged at Info, so they are visible by default.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New returns a secure logger writing format to w. An empty format means text.
func New(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := Level(verbose)

	var handler slog.Handler
	switch format {
	case "", FormatText:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatPretty:
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Level:           charmLevel(level),
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(NewSecureHandler(handler)), nil
}

func charmLevel(l slog.Level) charmlog.Level {
	if l <= slog.LevelDebug {
		return charmlog.DebugLevel
	}
	return charmlog.InfoLevel
}

// NewSecureLogger returns a secure text logger.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(verbose)})))
}

// Discard returns a logger that drops everything. Tests use it to keep their
// output clean.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
