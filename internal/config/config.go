// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"server"`
	Sheet struct {
		ID string `mapstructure:"id"`
	} `mapstructure:"sheet"`
	// Workbook is only ever set by a project file or --xlsx.
	Workbook string `mapstructure:"workbook"`
	HTTP struct {
		Timeout int `mapstructure:"timeout"` // seconds
	} `mapstructure:"http"`
	Plot struct {
		Bins          int  `mapstructure:"bins"`
		TopK          int  `mapstructure:"top_k"`
		PieTopK       int  `mapstructure:"pie_top_k"`
		IncludeOthers bool `mapstructure:"include_others"`
	} `mapstructure:"plot"`
	Chart struct {
		Width  int `mapstructure:"width"`
		Height int `mapstructure:"height"`
	} `mapstructure:"chart"`
	Telemetry struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"telemetry"`
	Output struct {
		Color bool `mapstructure:"color"`
	} `mapstructure:"output"`
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

// defaults is the single source for default values; ResetConfig restores them.
var defaults = map[string]any{
	"server.url":          "http://localhost:8000",
	"http.timeout":        30,
	"plot.bins":           10,
	"plot.top_k":          30,
	"plot.pie_top_k":      10,
	"plot.include_others": true,
	"chart.width":         1024,
	"chart.height":        576,
	"telemetry.enabled":   true,
	"output.color":        true,
}

// Load reads the configuration from ~/.sheetkit/config.yaml, a .sheetkit.yaml
// project file in the working directory or its parents, and SHEETKIT_*
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	// Environment variable overrides
	viper.SetEnvPrefix("SHEETKIT")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	if wd, err := os.Getwd(); err == nil {
		proj, err := FindProject(wd)
		if err != nil {
			return nil, err
		}
		if err := proj.Apply(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetkit"
	}
	return filepath.Join(home, ".sheetkit")
}

// Dir returns the directory holding config.yaml and the telemetry history.
func Dir() string { return configDir() }
