// Package watch re-plots a local workbook whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Config holds the watcher configuration.
type Config struct {
	Files    []string `json:"files"`
	Debounce int      `json:"debounceMs"` // Milliseconds to wait after the last write
}

// Event records one handled change.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// Handler is called once per settled change to a watched file.
type Handler func(ctx context.Context, path string) error

// Status represents the current watcher status.
type Status struct {
	Running    bool     `json:"running"`
	Files      []string `json:"files"`
	EventCount int      `json:"eventCount"`
	StartedAt  string   `json:"startedAt,omitempty"`
}

// Watcher monitors workbook files and calls Handler after each burst of writes.
// Directories are watched rather than files so editors that save by
// rename-and-replace keep being seen.
type Watcher struct {
	Config  Config
	Logger  zerolog.Logger
	Handler Handler

	mu       sync.Mutex
	events   []Event
	files    map[string]bool
	started  time.Time
	ctx      context.Context
	watcher  *fsnotify.Watcher
	debounce map[string]*time.Timer
}

// New creates a new Watcher with the given configuration.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500
	}

	return &Watcher{
		Config:   config,
		Logger:   zerolog.Nop(),
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the configured files. It blocks until the context is cancelled.
// The underlying watcher is closed when Start returns, including on setup errors.
func (w *Watcher) Start(ctx context.Context) error {
	files, err := w.watchFiles()
	if err != nil {
		if cerr := w.watcher.Close(); cerr != nil {
			w.Logger.Warn().Err(cerr).Msg("could not close watcher")
		}
		return err
	}

	w.mu.Lock()
	w.files = files
	w.ctx = ctx
	w.started = time.Now()
	w.mu.Unlock()

	w.Logger.Info().Int("files", len(files)).Int("debounce_ms", w.Config.Debounce).Msg("watching")

	for {
		select {
		case <-ctx.Done():
			w.Logger.Debug().Msg("stopping watcher")
			w.stopTimers()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn().Err(err).Msg("watch error")
		}
	}
}

// watchFiles validates the configured workbooks and watches their directories.
func (w *Watcher) watchFiles() (map[string]bool, error) {
	if len(w.Config.Files) == 0 {
		return nil, fmt.Errorf("no workbook to watch")
	}
	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, file := range w.Config.Files {
		if !IsWorkbook(file) {
			return nil, fmt.Errorf("expected an .xlsx file, got %q", file)
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %s: %w", file, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("could not watch %s: %w", file, err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("could not watch %s: %w", dir, err)
		}
	}
	return files, nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only process create and write events
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	// Debounce: spreadsheet apps write in several bursts
	w.mu.Lock()
	if !w.files[path] {
		w.mu.Unlock()
		return
	}
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	op := event.Op.String()
	w.debounce[path] = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		w.processFile(path, op)
	})
	w.mu.Unlock()
}

func (w *Watcher) processFile(path, operation string) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
		Status:    "processed",
	}
	if w.Handler != nil {
		if err := w.Handler(ctx, path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Error().Err(err).Str("path", path).Msg("replot failed")
		} else {
			w.Logger.Debug().Str("path", path).Msg("replotted")
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.debounce {
		t.Stop()
		delete(w.debounce, path)
	}
}

// Close releases the underlying watcher when Start was never run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// IsWorkbook reports whether path looks like an .xlsx file worth watching.
// Office lock files ("~$book.xlsx") are excluded.
func IsWorkbook(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".xlsx")
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Status{
		Running:    w.ctx != nil && w.ctx.Err() == nil,
		EventCount: len(w.events),
	}
	for f := range w.files {
		st.Files = append(st.Files, f)
	}
	if !w.started.IsZero() {
		st.StartedAt = w.started.Format(time.RFC3339)
	}
	return st
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}
