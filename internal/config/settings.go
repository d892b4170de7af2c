package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

var envReplacer = strings.NewReplacer(".", "_")

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	server := viper.GetString("server.url")
	if u, err := url.Parse(server); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, ConfigIssue{
			Key:      "server.url",
			Severity: "error",
			Message:  fmt.Sprintf("server.url %q is not an absolute http(s) URL", server),
			Fix:      "sheetkit config set server.url http://localhost:8000",
		})
	} else {
		issues = append(issues, ConfigIssue{
			Key:      "server.url",
			Severity: "info",
			Message:  "Sheet service at " + server,
		})
	}

	if viper.GetString("sheet.id") == "" {
		issues = append(issues, ConfigIssue{
			Key:      "sheet.id",
			Severity: "warning",
			Message:  "No default sheet — pass --sheet or paste one in the shell",
			Fix:      "sheetkit config set sheet.id <spreadsheet URL or ID>",
		})
	}

	for _, key := range []string{"http.timeout", "plot.bins", "plot.top_k", "plot.pie_top_k", "chart.width", "chart.height"} {
		if viper.GetInt(key) <= 0 {
			issues = append(issues, ConfigIssue{
				Key:      key,
				Severity: "error",
				Message:  fmt.Sprintf("%s must be a positive integer, got %q", key, viper.GetString(key)),
				Fix:      fmt.Sprintf("sheetkit config set %s %v", key, defaults[key]),
			})
		}
	}

	return issues
}

// Check loads the configuration as seen from dir and validates it together
// with the project file there. Load failures are reported as issues.
func Check(dir string) []ConfigIssue {
	proj, err := FindProject(dir)
	if err != nil {
		return []ConfigIssue{{
			Key:      ProjectFile,
			Severity: "error",
			Message:  err.Error(),
			Fix:      "fix or remove " + ProjectFile,
		}}
	}
	if _, err := Load(); err != nil {
		return []ConfigIssue{{
			Key:      "config",
			Severity: "error",
			Message:  fmt.Sprintf("could not load configuration: %v", err),
			Fix:      "sheetkit config reset",
		}}
	}

	issues := Validate()
	if proj != nil {
		for _, msg := range proj.Validate() {
			issues = append(issues, ConfigIssue{Key: proj.Path, Severity: "error", Message: msg})
		}
	}
	return issues
}

// Set sets a config value and saves it to the user config file. Numeric and
// boolean keys are stored typed so the YAML file round-trips.
func Set(key, value string) error {
	var typed any = value
	switch defaults[key].(type) {
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer, got %q", key, value)
		}
		typed = n
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", key, value)
		}
		typed = b
	}
	if err := SaveConfig(map[string]any{key: typed}); err != nil {
		return err
	}
	viper.Set(key, typed)
	return nil
}

// Get retrieves a config value.
func Get(key string) string {
	return viper.GetString(key)
}

// Keys returns every known config key in sorted order.
func Keys() []string {
	keys := []string{"sheet.id"}
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResetConfig resets all config to defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for k, v := range defaults {
		viper.Set(k, v)
	}
	viper.Set("sheet.id", "")
	return nil
}

// SaveConfig writes updates into ~/.sheetkit/config.yaml. Only keys already in
// that file and the updated ones are written; values coming from a project
// file or the environment stay out of it.
func SaveConfig(updates map[string]any) error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	user := viper.New()
	user.SetConfigType("yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := user.ReadConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("could not parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("could not read config: %w", err)
	}

	for k, v := range updates {
		user.Set(k, v)
	}
	if err := user.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("could not restrict config permissions: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	sb.WriteString("Service\n")
	sb.WriteString(fmt.Sprintf("  server:    %s\n", viper.GetString("server.url")))
	sb.WriteString(fmt.Sprintf("  timeout:   %ds\n", viper.GetInt("http.timeout")))
	if id := viper.GetString("sheet.id"); id != "" {
		sb.WriteString(fmt.Sprintf("  sheet:     %s\n", id))
	}
	sb.WriteString("\n")

	sb.WriteString("Plot\n")
	sb.WriteString(fmt.Sprintf("  bins:      %d\n", viper.GetInt("plot.bins")))
	sb.WriteString(fmt.Sprintf("  top_k:     %d\n", viper.GetInt("plot.top_k")))
	sb.WriteString(fmt.Sprintf("  pie_top_k: %d\n", viper.GetInt("plot.pie_top_k")))
	sb.WriteString(fmt.Sprintf("  others:    %t\n", viper.GetBool("plot.include_others")))
	sb.WriteString(fmt.Sprintf("  size:      %dx%d\n", viper.GetInt("chart.width"), viper.GetInt("chart.height")))
	sb.WriteString("\n")

	sb.WriteString("Output\n")
	sb.WriteString(fmt.Sprintf("  color:     %t\n", viper.GetBool("output.color")))
	sb.WriteString(fmt.Sprintf("  telemetry: %t\n", viper.GetBool("telemetry.enabled")))

	return sb.String()
}
