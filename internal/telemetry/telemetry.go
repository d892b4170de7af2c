// Package telemetry keeps a local history of service round trips.
// Nothing leaves the machine; sheet IDs and cell values are never stored.
package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Event is one completed controller action.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	Action     string    `json:"action"`
	DurationMs int64     `json:"ms"`
	ServerMs   int64     `json:"server_ms,omitempty"`
	OK         bool      `json:"ok"`
}

// ActionStats aggregates the events of one action.
type ActionStats struct {
	Action      string  `json:"action"`
	Count       int     `json:"count"`
	Errors      int     `json:"errors"`
	AvgMs       float64 `json:"avg_ms"`
	AvgServerMs float64 `json:"avg_server_ms"`
}

// Stats summarizes the whole store.
type Stats struct {
	Total   int           `json:"total"`
	Errors  int           `json:"errors"`
	Actions []ActionStats `json:"actions"`
}

// Recorder accepts events. *Store implements it.
type Recorder interface {
	Record(e Event)
}

// Store is an append-only JSONL file (~/.sheetkit/history.jsonl by default).
type Store struct {
	Path    string
	MaxSize int64 // default 10MB

	mu sync.Mutex
}

// DefaultStore returns a Store at the default location.
func DefaultStore() *Store {
	home, _ := os.UserHomeDir()
	return &Store{
		Path:    filepath.Join(home, ".sheetkit", "history.jsonl"),
		MaxSize: 10 * 1024 * 1024,
	}
}

// Record appends an event. Best-effort: failures are swallowed.
func (s *Store) Record(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_ = os.MkdirAll(filepath.Dir(s.Path), 0755)
	s.rotate()

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	_, _ = f.Write(append(data, '\n'))
}

// Summary aggregates the store per action, busiest first.
func (s *Store) Summary() (*Stats, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.Path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return &Stats{}, nil
		}
		return nil, err
	}

	type acc struct {
		count, errors       int
		totalMs, totalSrvMs int64
	}
	byAction := make(map[string]*acc)
	stats := &Stats{}

	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		a := byAction[e.Action]
		if a == nil {
			a = &acc{}
			byAction[e.Action] = a
		}
		a.count++
		a.totalMs += e.DurationMs
		a.totalSrvMs += e.ServerMs
		stats.Total++
		if !e.OK {
			a.errors++
			stats.Errors++
		}
	}

	for name, a := range byAction {
		stats.Actions = append(stats.Actions, ActionStats{
			Action:      name,
			Count:       a.count,
			Errors:      a.errors,
			AvgMs:       float64(a.totalMs) / float64(a.count),
			AvgServerMs: float64(a.totalSrvMs) / float64(a.count),
		})
	}
	sort.Slice(stats.Actions, func(i, j int) bool {
		if stats.Actions[i].Count != stats.Actions[j].Count {
			return stats.Actions[i].Count > stats.Actions[j].Count
		}
		return stats.Actions[i].Action < stats.Actions[j].Action
	})
	return stats, nil
}

// Size returns the size of the store in bytes.
func (s *Store) Size() int64 {
	info, err := os.Stat(s.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// rotate truncates the store once it exceeds MaxSize. Caller holds mu.
func (s *Store) rotate() {
	if s.MaxSize <= 0 {
		return
	}
	info, err := os.Stat(s.Path)
	if err != nil || info.Size() <= s.MaxSize {
		return
	}
	_ = os.Truncate(s.Path, 0)
}

// Clear removes all recorded events.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil
	}
	return os.Truncate(s.Path, 0)
}

// Discard is a Recorder that drops every event.
type Discard struct{}

// Record implements Recorder.
func (Discard) Record(Event) {}
