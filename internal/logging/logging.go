// Package logging builds the diagnostic logger shared by commands.
// Diagnostics go to stderr so stdout stays clean for --json and pipes.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w (stderr when nil).
// verbose enables debug output; otherwise only warnings and errors are shown.
func New(w io.Writer, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: os.Getenv("NO_COLOR") != ""}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Nop discards everything. Used by tests and library callers that do not log.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
