// Package config loads project-level settings from codelens.yml.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from codelens.yml.
// Zero-value fields fall back to the defaults below.
type ProjectConfig struct {
	// Anomaly detection thresholds.
	HighCouplingThreshold int `yaml:"highCouplingThreshold,omitempty"`
	GodNodeThreshold      int `yaml:"godNodeThreshold,omitempty"`

	// FlowAcceptRatio is the minimum share of an externally generated
	// flow batch that must validate before any of it is merged.
	FlowAcceptRatio float64 `yaml:"flowAcceptRatio,omitempty"`

	// Scanner settings.
	Languages   []string `yaml:"languages,omitempty"`
	ExcludeDirs []string `yaml:"excludeDirs,omitempty"`

	// Direction is the default diagram layout direction (TD or LR).
	Direction string `yaml:"direction,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// Default returns the stock configuration.
func Default() *ProjectConfig {
	return &ProjectConfig{
		HighCouplingThreshold: 8,
		GodNodeThreshold:      10,
		FlowAcceptRatio:       0.5,
		Direction:             "TD",
	}
}

// Load attempts to read codelens.yml or codelens.yaml from the given
// directory. Returns the default config (not an error) if no config file
// exists; unset fields in a found file also fall back to defaults.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codelens.yml", "codelens.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		cfg.applyDefaults()
		return cfg, nil
	}
	return Default(), nil
}

func (c *ProjectConfig) applyDefaults() {
	d := Default()
	if c.HighCouplingThreshold <= 0 {
		c.HighCouplingThreshold = d.HighCouplingThreshold
	}
	if c.GodNodeThreshold <= 0 {
		c.GodNodeThreshold = d.GodNodeThreshold
	}
	if c.FlowAcceptRatio <= 0 || c.FlowAcceptRatio > 1 {
		c.FlowAcceptRatio = d.FlowAcceptRatio
	}
	if c.Direction == "" {
		c.Direction = d.Direction
	}
}
