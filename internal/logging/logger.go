// Package logging builds the zerolog loggers used by the CLI and injected into
// the preprocessing and fetching packages.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Mode selects the output format and level of a logger
type Mode string

// Supported modes
const (
	ModePretty Mode = "pretty" // colored console output, info level
	ModeDebug  Mode = "debug"  // colored console output, debug level
	ModeInfo   Mode = "info"   // JSON output, info level
	ModeProd   Mode = "prod"   // JSON output, warn level
	ModeTest   Mode = "test"   // JSON output, error level
)

// ParseMode converts a string to a Mode
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePretty, ModeDebug, ModeInfo, ModeProd, ModeTest:
		return m, nil
	default:
		return "", fmt.Errorf("unknown log mode %q", s)
	}
}

// Level returns the minimum level logged in the mode
func (m Mode) Level() zerolog.Level {
	switch m {
	case ModeDebug:
		return zerolog.DebugLevel
	case ModeProd:
		return zerolog.WarnLevel
	case ModeTest:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger writing to w in the given mode
func New(mode Mode, w io.Writer) zerolog.Logger {
	var out io.Writer = w
	if mode == ModePretty || mode == ModeDebug {
		out = consoleWriter(w)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(out).Level(mode.Level()).With().Timestamp().Logger()
}

// Init creates a logger with New and installs it as zerolog's default context logger
func Init(mode Mode, w io.Writer) zerolog.Logger {
	log := New(mode, w)
	zerolog.DefaultContextLogger = &log
	return log
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		FormatLevel: func(i interface{}) string {
			level, _ := i.(string)
			return colorizeLevel(level)
		},
		FormatMessage: func(i interface{}) string {
			msg, _ := i.(string)
			return colorize(msg, cyan)
		},
		FormatFieldName: func(i interface{}) string {
			return colorize(fmt.Sprint(i)+":", gray)
		},
		FormatFieldValue: func(i interface{}) string {
			switch v := i.(type) {
			case string:
				return colorize(v, blue)
			case json.Number:
				return colorize(v.String(), blue)
			default:
				return colorize(fmt.Sprint(v), blue)
			}
		},
	}
}

// ANSI color codes
const (
	gray  = "\x1b[37m"
	blue  = "\x1b[34m"
	cyan  = "\x1b[36m"
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

func colorize(s, color string) string {
	return color + s + reset
}

func colorizeLevel(level string) string {
	switch level {
	case "debug":
		return colorize("DBG", gray)
	case "info":
		return colorize("INF", blue)
	case "warn":
		return colorize("WRN", cyan)
	case "error":
		return colorize("ERR", red)
	default:
		return colorize(level, blue)
	}
}
