package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-directory defaults file name.
const ProjectFile = ".sheetkit.yaml"

// ProjectConfig pins defaults for everything run from one directory tree,
// typically the sheet a team works on and how its columns are charted.
type ProjectConfig struct {
	Path string `yaml:"-" json:"path"`

	Server   string `yaml:"server" json:"server,omitempty"`
	Sheet    string `yaml:"sheet" json:"sheet,omitempty"`
	Workbook string `yaml:"workbook" json:"workbook,omitempty"`

	Plot struct {
		Bins          int   `yaml:"bins" json:"bins,omitempty"`
		TopK          int   `yaml:"top_k" json:"top_k,omitempty"`
		PieTopK       int   `yaml:"pie_top_k" json:"pie_top_k,omitempty"`
		IncludeOthers *bool `yaml:"include_others" json:"include_others,omitempty"`
	} `yaml:"plot" json:"plot"`

	Chart struct {
		Width  int `yaml:"width" json:"width,omitempty"`
		Height int `yaml:"height" json:"height,omitempty"`
	} `yaml:"chart" json:"chart"`
}

// LoadProjectFrom reads a project file. Returns nil (not error) if it does not exist.
func LoadProjectFrom(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read project config at %s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid project config at %s: %w", path, err)
	}
	cfg.Path = path
	if cfg.Workbook != "" && !filepath.IsAbs(cfg.Workbook) {
		cfg.Workbook = filepath.Join(filepath.Dir(path), cfg.Workbook)
	}
	return &cfg, nil
}

// FindProject looks for a project file in dir and each of its parents.
// Returns nil (not error) when none is found.
func FindProject(dir string) (*ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		cfg, err := LoadProjectFrom(filepath.Join(dir, ProjectFile))
		if err != nil || cfg != nil {
			return cfg, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks a project file for values viper would reject later.
func (p *ProjectConfig) Validate() []string {
	var issues []string
	if p.Plot.Bins < 0 {
		issues = append(issues, fmt.Sprintf("plot.bins must be positive, got %d", p.Plot.Bins))
	}
	if p.Plot.TopK < 0 {
		issues = append(issues, fmt.Sprintf("plot.top_k must be positive, got %d", p.Plot.TopK))
	}
	if p.Plot.PieTopK < 0 {
		issues = append(issues, fmt.Sprintf("plot.pie_top_k must be positive, got %d", p.Plot.PieTopK))
	}
	if p.Chart.Width < 0 || p.Chart.Height < 0 {
		issues = append(issues, "chart size must be positive")
	}
	if p.Workbook != "" {
		if _, err := os.Stat(p.Workbook); err != nil {
			issues = append(issues, fmt.Sprintf("workbook %s is not readable", p.Workbook))
		}
	}
	return issues
}

// Apply merges the project's non-zero values into the config layer, over the
// user config file but under SHEETKIT_* variables and flags.
// A nil project is a no-op.
func (p *ProjectConfig) Apply() error {
	if p == nil {
		return nil
	}
	values := p.values()
	if len(values) == 0 {
		return nil
	}
	if err := viper.MergeConfigMap(values); err != nil {
		return fmt.Errorf("could not apply project config %s: %w", p.Path, err)
	}
	return nil
}

// values returns the project's non-zero settings as a nested config map.
func (p *ProjectConfig) values() map[string]any {
	m := map[string]any{}
	put := func(key string, v any) {
		section, name, nested := strings.Cut(key, ".")
		if !nested {
			m[key] = v
			return
		}
		sub, ok := m[section].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[section] = sub
		}
		sub[name] = v
	}

	if p.Server != "" {
		put("server.url", p.Server)
	}
	if p.Sheet != "" {
		put("sheet.id", p.Sheet)
	}
	if p.Workbook != "" {
		put("workbook", p.Workbook)
	}
	if p.Plot.Bins > 0 {
		put("plot.bins", p.Plot.Bins)
	}
	if p.Plot.TopK > 0 {
		put("plot.top_k", p.Plot.TopK)
	}
	if p.Plot.PieTopK > 0 {
		put("plot.pie_top_k", p.Plot.PieTopK)
	}
	if p.Plot.IncludeOthers != nil {
		put("plot.include_others", *p.Plot.IncludeOthers)
	}
	if p.Chart.Width > 0 {
		put("chart.width", p.Chart.Width)
	}
	if p.Chart.Height > 0 {
		put("chart.height", p.Chart.Height)
	}
	return m
}
