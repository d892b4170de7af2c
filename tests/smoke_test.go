// Package tests provides smoke tests that validate every sheetkit command
// exists, runs, and exits cleanly without panicking.
// These tests run the built binary, so they are integration tests.
// They use a local workbook and do NOT require the sheet service.
package tests

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// sheetkitBin returns the path to the compiled sheetkit binary.
func sheetkitBin(t *testing.T) string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..")
	bin := filepath.Join(root, "bin", "sheetkit")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	if _, err := os.Stat(bin); os.IsNotExist(err) {
		t.Fatalf("sheetkit binary not found at %s — run 'go build -o bin/sheetkit .' first", bin)
	}
	return bin
}

// run executes sheetkit with args in an isolated HOME and returns stdout,
// stderr, and exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(sheetkitBin(t), args...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "NO_COLOR=1")
	cmd.Dir = t.TempDir()
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
	}
	return stdout.String(), stderr.String(), code
}

func fixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"name", "score", "team"},
		{"ana", 4, "red"},
		{"bo", 5, "blue"},
		{"cy", 5, "red"},
		{"di", 9, "green"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow("Sheet1", cell, &row)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestAllCommandsExist validates that every command appears in --help.
func TestAllCommandsExist(t *testing.T) {
	commands := []string{"sheet", "plot", "shell", "watch", "stats", "config", "completion", "version"}

	stdout, _, code := run(t, "--help")
	if code != 0 {
		t.Fatalf("sheetkit --help exited with code %d", code)
	}
	for _, cmd := range commands {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("command %q not found in sheetkit --help output", cmd)
		}
	}
}

// TestBoundsJSON validates the JSON envelope against a local workbook.
func TestBoundsJSON(t *testing.T) {
	stdout, stderr, code := run(t, "sheet", "bounds", "--xlsx", fixture(t), "--json")
	if code != 0 {
		t.Fatalf("sheet bounds should exit 0, stderr: %s", stderr)
	}
	var result struct {
		OK   bool `json:"ok"`
		Data struct {
			LastRow int      `json:"lastRow"`
			Headers []string `json:"headers"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("--json output is not valid JSON: %v\nOutput: %s", err, stdout)
	}
	if !result.OK || result.Data.LastRow != 5 || len(result.Data.Headers) != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
}

// TestCellByHeader validates header-name column resolution.
func TestCellByHeader(t *testing.T) {
	stdout, _, code := run(t, "sheet", "cell", "3", "team", "--xlsx", fixture(t))
	if code != 0 {
		t.Fatal("sheet cell should exit 0")
	}
	if !strings.Contains(stdout, "blue") {
		t.Errorf("cell output should contain the value, got: %s", stdout)
	}
}

// TestSetCellReadOnly validates local workbooks refuse writes.
func TestSetCellReadOnly(t *testing.T) {
	_, _, code := run(t, "sheet", "set-cell", "2", "B", "7", "--xlsx", fixture(t))
	if code == 0 {
		t.Error("set-cell on a local workbook should fail")
	}
}

// TestNoSheet validates the missing-sheet error.
func TestNoSheet(t *testing.T) {
	stdout, stderr, code := run(t, "sheet", "bounds", "--server", "http://127.0.0.1:1")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stdout+stderr, "no sheet selected") {
		t.Errorf("expected a missing-sheet message, got: %s%s", stdout, stderr)
	}
}

// TestPlotExports validates PNG and PDF export.
func TestPlotExports(t *testing.T) {
	book := fixture(t)
	out := t.TempDir()

	png := filepath.Join(out, "score.png")
	if _, stderr, code := run(t, "plot", "score", "--xlsx", book, "--out", png); code != 0 {
		t.Fatalf("plot --out png should exit 0, stderr: %s", stderr)
	}
	pdf := filepath.Join(out, "team.pdf")
	if _, stderr, code := run(t, "plot", "team", "--kind", "pie", "--xlsx", book, "--out", pdf); code != 0 {
		t.Fatalf("plot --out pdf should exit 0, stderr: %s", stderr)
	}

	data, err := os.ReadFile(pdf)
	if err != nil || !strings.HasPrefix(string(data), "%PDF-") {
		t.Error("expected a PDF file")
	}
	if info, err := os.Stat(png); err != nil || info.Size() == 0 {
		t.Error("expected a PNG file")
	}
}

// TestPlotBadMode validates flag validation.
func TestPlotBadMode(t *testing.T) {
	_, _, code := run(t, "plot", "score", "--mode", "sideways", "--xlsx", fixture(t))
	if code == 0 {
		t.Error("unknown mode should fail")
	}
}

// TestShellEval validates one-shot shell commands.
func TestShellEval(t *testing.T) {
	stdout, _, code := run(t, "shell", "--xlsx", fixture(t), "--eval", "bounds")
	if code != 0 {
		t.Fatal("shell --eval should exit 0")
	}
	if !strings.Contains(stdout, "Bounds:") {
		t.Errorf("expected bounds status line, got: %s", stdout)
	}
}

// TestVersionOutput validates version command format.
func TestVersionOutput(t *testing.T) {
	stdout, _, code := run(t, "version")
	if code != 0 {
		t.Fatal("sheetkit version should exit 0")
	}
	if !strings.Contains(stdout, "sheetkit") {
		t.Errorf("version output should contain 'sheetkit', got: %s", stdout)
	}
}

// TestStatsEmpty validates stats on a fresh HOME.
func TestStatsEmpty(t *testing.T) {
	stdout, _, code := run(t, "stats", "--json")
	if code != 0 {
		t.Fatal("stats should exit 0")
	}
	if !strings.Contains(stdout, `"ok": true`) {
		t.Errorf("unexpected stats output: %s", stdout)
	}
}

// TestConfigShowRuns validates config show does not panic.
func TestConfigShowRuns(t *testing.T) {
	_, _, code := run(t, "config", "show")
	if code > 1 {
		t.Errorf("config show should exit 0 or 1, got %d", code)
	}
}

// TestAllCommandsHaveHelp validates every command accepts --help.
func TestAllCommandsHaveHelp(t *testing.T) {
	commandPaths := [][]string{
		{"sheet", "bounds"}, {"sheet", "add-cols"}, {"sheet", "cell"}, {"sheet", "set-cell"}, {"sheet", "column"},
		{"plot"}, {"shell"}, {"watch"}, {"stats"},
		{"config", "show"}, {"config", "set"}, {"config", "get"}, {"config", "validate"}, {"config", "reset"}, {"config", "path"},
		{"completion", "bash"}, {"completion", "zsh"},
		{"version"},
	}

	for _, path := range commandPaths {
		args := append(path, "--help")
		t.Run(strings.Join(path, "_"), func(t *testing.T) {
			_, _, code := run(t, args...)
			if code != 0 {
				t.Errorf("sheetkit %s --help should exit 0", strings.Join(path, " "))
			}
		})
	}
}
