package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/klytics/sheetkit/internal/sheetapi"
)

func TestFprintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintJSON(&buf, "sheet bounds", map[string]int{"lastRow": 12}); err != nil {
		t.Fatal(err)
	}

	var got JSONResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !got.OK || got.Command != "sheet bounds" || got.Version == "" {
		t.Errorf("envelope = %+v", got)
	}
	if got.Error != "" || got.Code != 0 {
		t.Errorf("success envelope carries error fields: %+v", got)
	}
}

func TestFprintJSONError(t *testing.T) {
	var buf bytes.Buffer
	apiErr := &sheetapi.APIError{Endpoint: "bounds", StatusCode: 500, Message: "down"}
	if err := FprintJSONError(&buf, "sheet bounds", fmt.Errorf("fetch: %w", apiErr)); err != nil {
		t.Fatal(err)
	}

	var got JSONResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.OK || got.Code != ExitSystemError || got.Data != nil {
		t.Errorf("envelope = %+v", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"user", errors.New("row must be 1 or greater"), ExitUserError},
		{"api", &sheetapi.APIError{Endpoint: "cell", Message: "bad"}, ExitSystemError},
		{"path", &os.PathError{Op: "open", Path: "x.xlsx", Err: os.ErrNotExist}, ExitSystemError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}
