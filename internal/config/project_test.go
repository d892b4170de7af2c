package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestLoadProjectMissing(t *testing.T) {
	cfg, err := LoadProjectFrom("/nonexistent/.sheetkit.yaml")
	if err != nil {
		t.Fatalf("expected nil error for missing file, got: %v", err)
	}
	if cfg != nil {
		t.Error("expected nil config for missing file")
	}
}

func TestLoadProjectValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFile)
	content := `
server: "http://sheets.local:8000"
sheet: "1AbC_def-9"
workbook: data/survey.xlsx
plot:
  bins: 20
  include_others: false
chart:
  width: 800
`
	os.WriteFile(path, []byte(content), 0644)

	cfg, err := LoadProjectFrom(path)
	if err != nil {
		t.Fatalf("LoadProjectFrom failed: %v", err)
	}
	if cfg.Sheet != "1AbC_def-9" {
		t.Errorf("Sheet = %q", cfg.Sheet)
	}
	if cfg.Workbook != filepath.Join(dir, "data", "survey.xlsx") {
		t.Errorf("Workbook should resolve relative to the file, got %q", cfg.Workbook)
	}
	if cfg.Plot.Bins != 20 || cfg.Plot.IncludeOthers == nil || *cfg.Plot.IncludeOthers {
		t.Errorf("Plot = %+v", cfg.Plot)
	}
}

func TestLoadProjectInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectFile)
	os.WriteFile(path, []byte("plot: [unclosed"), 0644)
	if _, err := LoadProjectFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindProjectWalksUp(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, ProjectFile), []byte("sheet: parent-sheet\n"), 0644)
	nested := filepath.Join(root, "a", "b")
	os.MkdirAll(nested, 0755)

	cfg, err := FindProject(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil || cfg.Sheet != "parent-sheet" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestProjectApply(t *testing.T) {
	setupTestConfig(t)

	no := false
	p := &ProjectConfig{Sheet: "proj"}
	p.Plot.TopK = 5
	p.Plot.IncludeOthers = &no
	if err := p.Apply(); err != nil {
		t.Fatal(err)
	}

	if viper.GetString("sheet.id") != "proj" {
		t.Errorf("sheet.id = %q", viper.GetString("sheet.id"))
	}
	if viper.GetInt("plot.top_k") != 5 {
		t.Errorf("top_k = %d", viper.GetInt("plot.top_k"))
	}
	if viper.GetInt("plot.bins") != 10 {
		t.Error("zero values must not override")
	}
	if viper.GetBool("plot.include_others") {
		t.Error("include_others should be false")
	}

	var nilProject *ProjectConfig
	if err := nilProject.Apply(); err != nil {
		t.Errorf("nil project: %v", err)
	}
}

// inProject makes a fresh HOME and a working directory holding a project file.
func inProject(t *testing.T, project string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(project), 0644); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadPrecedence(t *testing.T) {
	inProject(t, "sheet: projsheet\nplot:\n  bins: 5\n  top_k: 12\n")
	os.MkdirAll(configDir(), 0700)
	os.WriteFile(ConfigPath(), []byte("sheet:\n  id: usersheet\nplot:\n  top_k: 40\n  pie_top_k: 6\n"), 0600)
	t.Setenv("SHEETKIT_PLOT_BINS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env over project", cfg.Plot.Bins, 25},
		{"project over user file", cfg.Plot.TopK, 12},
		{"project sheet", cfg.Sheet.ID, "projsheet"},
		{"user file over default", cfg.Plot.PieTopK, 6},
		{"default", cfg.Chart.Width, 1024},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSetInsideProjectWritesOnlyUserKeys(t *testing.T) {
	inProject(t, "sheet: projsheet\nworkbook: book.xlsx\nplot:\n  bins: 5\n")
	os.MkdirAll(configDir(), 0700)
	os.WriteFile(ConfigPath(), []byte("server:\n  url: http://sheets.local:8000\n"), 0600)

	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
	if err := Set("plot.top_k", "7"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	var saved map[string]any
	if err := yaml.Unmarshal(data, &saved); err != nil {
		t.Fatalf("invalid config %q: %v", data, err)
	}
	if _, ok := saved["sheet"]; ok {
		t.Errorf("project sheet leaked into user config:\n%s", data)
	}
	if _, ok := saved["workbook"]; ok {
		t.Errorf("project workbook leaked into user config:\n%s", data)
	}
	plot, _ := saved["plot"].(map[string]any)
	if _, ok := plot["bins"]; ok {
		t.Errorf("project bins leaked into user config:\n%s", data)
	}
	if plot["top_k"] != 7 {
		t.Errorf("top_k not saved:\n%s", data)
	}
	server, _ := saved["server"].(map[string]any)
	if server["url"] != "http://sheets.local:8000" {
		t.Errorf("existing user key lost:\n%s", data)
	}
	if Get("plot.top_k") != "7" {
		t.Errorf("Get(plot.top_k) = %q", Get("plot.top_k"))
	}
}

func TestProjectValidate(t *testing.T) {
	p := &ProjectConfig{Workbook: "/nonexistent/book.xlsx"}
	p.Plot.Bins = -1
	if issues := p.Validate(); len(issues) != 2 {
		t.Errorf("issues = %v", issues)
	}
	if issues := (&ProjectConfig{}).Validate(); len(issues) != 0 {
		t.Errorf("empty project issues = %v", issues)
	}
}

func TestCheckBrokenProject(t *testing.T) {
	inProject(t, "plot: [unclosed")

	issues := Check(".")
	if len(issues) != 1 || issues[0].Severity != "error" || issues[0].Key != ProjectFile {
		t.Errorf("issues = %+v", issues)
	}
}

func TestCheckIncludesProjectIssues(t *testing.T) {
	inProject(t, "sheet: projsheet\nplot:\n  bins: -1\n")

	var projectErrors int
	for _, issue := range Check(".") {
		if issue.Severity == "error" && filepath.Base(issue.Key) == ProjectFile {
			projectErrors++
		}
		if issue.Key == "sheet.id" {
			t.Error("project sheet should satisfy sheet.id")
		}
	}
	if projectErrors != 1 {
		t.Errorf("project errors = %d, want 1", projectErrors)
	}
}
