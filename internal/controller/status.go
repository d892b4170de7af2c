package controller

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Status is the single line of user-facing feedback the controller maintains.
// Every action ends by writing either an info or an error line.
type Status struct {
	w io.Writer

	mu      sync.Mutex
	last    string
	lastErr bool
}

// NewStatus writes status lines to w. A nil writer keeps them in memory only.
func NewStatus(w io.Writer) *Status {
	return &Status{w: w}
}

// Info records a success message.
func (s *Status) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.set(msg, false)
	if s.w != nil {
		color.New(color.FgGreen).Fprint(s.w, "✓ ")
		fmt.Fprintln(s.w, msg)
	}
}

// Error records a failure message.
func (s *Status) Error(err error) {
	msg := err.Error()
	s.set(msg, true)
	if s.w != nil {
		color.New(color.FgRed).Fprintf(s.w, "✗ %s\n", msg)
	}
}

// Last returns the most recent message and whether it was an error.
func (s *Status) Last() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

func (s *Status) set(msg string, isErr bool) {
	s.mu.Lock()
	s.last, s.lastErr = msg, isErr
	s.mu.Unlock()
}
