package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	t.Setenv("HOME", dir)
	t.Cleanup(func() {
		viper.Reset()
	})
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "http://localhost:8000" {
		t.Errorf("default server = %q", cfg.Server.URL)
	}
	if cfg.Plot.Bins != 10 || cfg.Plot.TopK != 30 || cfg.Plot.PieTopK != 10 || !cfg.Plot.IncludeOthers {
		t.Errorf("plot defaults = %+v", cfg.Plot)
	}
	if cfg.Chart.Width != 1024 || cfg.Chart.Height != 576 {
		t.Errorf("chart defaults = %+v", cfg.Chart)
	}
	if cfg.Timeout().Seconds() != 30 {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHEETKIT_SERVER_URL", "http://sheets.internal:9000")
	t.Setenv("SHEETKIT_PLOT_BINS", "25")
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "http://sheets.internal:9000" {
		t.Errorf("server = %q", cfg.Server.URL)
	}
	if cfg.Plot.Bins != 25 {
		t.Errorf("bins = %d", cfg.Plot.Bins)
	}
}

func TestValidateDefaults(t *testing.T) {
	setupTestConfig(t)

	for _, issue := range Validate() {
		if issue.Severity == "error" {
			t.Errorf("unexpected error: %s", issue.Message)
		}
	}
}

func TestValidateNoSheetWarning(t *testing.T) {
	setupTestConfig(t)
	viper.Set("sheet.id", "")

	hasWarning := false
	for _, issue := range Validate() {
		if issue.Key == "sheet.id" && issue.Severity == "warning" {
			hasWarning = true
		}
	}
	if !hasWarning {
		t.Error("expected sheet.id warning")
	}
}

func TestValidateBadValues(t *testing.T) {
	setupTestConfig(t)
	viper.Set("server.url", "localhost")
	viper.Set("plot.bins", 0)

	errs := map[string]bool{}
	for _, issue := range Validate() {
		if issue.Severity == "error" {
			errs[issue.Key] = true
		}
	}
	if !errs["server.url"] || !errs["plot.bins"] {
		t.Errorf("errors = %v", errs)
	}
}

func TestSetAndGet(t *testing.T) {
	dir := setupTestConfig(t)

	if err := Set("server.url", "http://example.test"); err != nil {
		t.Fatal(err)
	}
	if got := Get("server.url"); got != "http://example.test" {
		t.Errorf("Get(server.url) = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, ".sheetkit", "config.yaml")); err != nil {
		t.Errorf("config not written: %v", err)
	}

	if err := Set("plot.bins", "twelve"); err == nil {
		t.Error("expected integer error")
	}
	if err := Set("plot.bins", "12"); err != nil {
		t.Fatal(err)
	}
	if viper.GetInt("plot.bins") != 12 {
		t.Errorf("bins = %d", viper.GetInt("plot.bins"))
	}
	if err := Set("plot.include_others", "maybe"); err == nil {
		t.Error("expected boolean error")
	}
}

func TestShowConfig(t *testing.T) {
	setupTestConfig(t)
	viper.Set("sheet.id", "abc123")

	output := ShowConfig()
	for _, want := range []string{"http://localhost:8000", "abc123", "bins:      10", "1024x576"} {
		if !strings.Contains(output, want) {
			t.Errorf("ShowConfig missing %q", want)
		}
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if !strings.Contains(path, ".sheetkit") || !strings.Contains(path, "config.yaml") {
		t.Errorf("unexpected path: %q", path)
	}
}

func TestResetConfig(t *testing.T) {
	setupTestConfig(t)
	if err := Set("server.url", "http://elsewhere"); err != nil {
		t.Fatal(err)
	}
	if err := Set("sheet.id", "abc"); err != nil {
		t.Fatal(err)
	}

	if err := ResetConfig(); err != nil {
		t.Fatal(err)
	}
	if viper.GetString("server.url") != "http://localhost:8000" {
		t.Errorf("server should reset to default, got %q", viper.GetString("server.url"))
	}
	if viper.GetString("sheet.id") != "" {
		t.Error("sheet should be cleared")
	}
	if _, err := os.Stat(ConfigPath()); !os.IsNotExist(err) {
		t.Error("config file should be deleted")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(defaults)+1 {
		t.Errorf("keys = %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("keys not sorted: %v", keys)
		}
	}
}
