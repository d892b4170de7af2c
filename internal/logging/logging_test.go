package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestVerboseShowsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true)
	log.Debug().Str("action", "bounds").Msg("dispatch")
	if !strings.Contains(buf.String(), "dispatch") || !strings.Contains(buf.String(), "bounds") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestQuietHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)
	log.Debug().Msg("hidden")
	log.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug output should be suppressed")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warnings should be printed")
	}
}
