package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape. The API key is never
// read from files; it comes from the environment only.
type FileConfig struct {
	TemplatePath  *string     `yaml:"template_path,omitempty"`
	TemplatesDir  *string     `yaml:"templates_dir,omitempty"`
	AccountID     *string     `yaml:"account_id,omitempty"`
	Region        *string     `yaml:"region,omitempty"`
	Endpoint      *string     `yaml:"endpoint,omitempty"`
	TemplateType  *string     `yaml:"template_type,omitempty"`
	Include       *string     `yaml:"include,omitempty"`
	Exclude       *string     `yaml:"exclude,omitempty"`
	Concurrency   *int        `yaml:"concurrency,omitempty"`
	Timeout       *string     `yaml:"timeout,omitempty"`
	OutputResults *bool       `yaml:"output_results,omitempty"`
	ResultsFile   *string     `yaml:"results_file,omitempty"`
	SARIF         *string     `yaml:"sarif,omitempty"`
	NoColor       *bool       `yaml:"no_color,omitempty"`
	Thresholds    *Thresholds `yaml:"thresholds,omitempty"`
}

// Thresholds holds the accepted number of failing checks per risk level.
// A nil field leaves the level unbounded.
type Thresholds struct {
	Extreme  *int `yaml:"extreme,omitempty"`
	VeryHigh *int `yaml:"very_high,omitempty"`
	High     *int `yaml:"high,omitempty"`
	Medium   *int `yaml:"medium,omitempty"`
	Low      *int `yaml:"low,omitempty"`
}

// Get returns the configured maximum for a level, nil when unset.
func (t *Thresholds) Get(l types.RiskLevel) *int {
	if t == nil {
		return nil
	}
	switch l {
	case types.RiskExtreme:
		return t.Extreme
	case types.RiskVeryHigh:
		return t.VeryHigh
	case types.RiskHigh:
		return t.High
	case types.RiskMedium:
		return t.Medium
	case types.RiskLow:
		return t.Low
	}
	return nil
}

// Validate rejects negative thresholds and non-positive worker counts.
func (fc FileConfig) Validate() error {
	for _, l := range types.RiskLevels {
		if v := fc.Thresholds.Get(l); v != nil && *v < 0 {
			return fmt.Errorf("thresholds.%s: must not be negative, got %d", l.Key(), *v)
		}
	}
	if fc.Concurrency != nil && *fc.Concurrency < 0 {
		return fmt.Errorf("concurrency: must not be negative, got %d", *fc.Concurrency)
	}
	return nil
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ErrNoConfig is returned when no config file exists at the searched locations.
var ErrNoConfig = errors.New("no config file")

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".templatescan.yml", ".templatescan.yaml", "templatescan.yml", "templatescan.yaml"}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(root string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNoConfig
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return FileConfig{}, ErrNoConfig
	}
	p := filepath.Join(base, "templatescan", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return FileConfig{}, ErrNoConfig
}
