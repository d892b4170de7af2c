// Package progress provides a terminal spinner for slow sheet requests.
// All output goes to stderr to avoid polluting stdout/pipes.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner shows an animated label while a request of unknown length runs.
type Spinner struct {
	Label   string
	Enabled bool
	Out     io.Writer

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner on stderr.
// Disabled when quiet (e.g. --json), when stderr is not a terminal, or with
// SHEETKIT_NO_PROGRESS=1.
func NewSpinner(label string, quiet bool) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: !quiet && shouldEnable(),
		Out:     os.Stderr,
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		frames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Fprintf(s.Out, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
					i++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and clears the line. A non-empty result is
// printed in its place.
func (s *Spinner) Stop(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if !s.Enabled {
		return
	}
	if result == "" {
		fmt.Fprint(s.Out, "\r\033[K")
		return
	}
	fmt.Fprintf(s.Out, "\r\033[K✓ %s\n", result)
}

// Update changes the spinner label while it's running.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

// While runs fn with a spinner labelled label and clears it afterwards.
func While(label string, quiet bool, fn func() error) error {
	s := NewSpinner(label, quiet)
	s.Start()
	err := fn()
	s.Stop("")
	return err
}

func shouldEnable() bool {
	if os.Getenv("SHEETKIT_NO_PROGRESS") == "1" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
