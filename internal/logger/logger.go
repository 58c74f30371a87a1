// Package logger wraps zerolog for datavault.
//
// Logger embeds zerolog.Logger, so the full zerolog API is available on
// *Logger. Library packages take a *Logger and fall back to Nop when given
// nil.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New returns a console logger writing to w at the given level.
// Color is used only when w is a terminal and NO_COLOR is unset.
func New(w io.Writer, level zerolog.Level) *Logger {
	noColor := os.Getenv("NO_COLOR") != ""
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		noColor = true
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
	return &Logger{zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewJSON returns a logger emitting JSON lines, used when output is piped
// into other tools.
func NewJSON(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Output formats accepted by NewFormat.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseFormat normalizes a format name. Empty means console.
func ParseFormat(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want %s or %s)", name, FormatConsole, FormatJSON)
	}
}

// NewFormat returns a console or JSON logger by format name.
func NewFormat(w io.Writer, level zerolog.Level, format string) (*Logger, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == FormatJSON {
		return NewJSON(w, level), nil
	}
	return New(w, level), nil
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// OrNop returns l, or a Nop logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// WithVault returns a child logger tagged with the vault root.
func (l *Logger) WithVault(root string) *Logger {
	return &Logger{l.With().Str("vault", root).Logger()}
}

// ParseLevel maps a level name to a zerolog level. Empty means warn.
func ParseLevel(name string) (zerolog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
}
