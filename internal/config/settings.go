package config

import (
	"time"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// Settings is the effective configuration of a run, resolved once at
// startup from flags, environment and config files. Nothing below the CLI
// reads the environment.
type Settings struct {
	APIKey        string
	TemplatePath  string
	TemplatesDir  string
	AccountID     string
	Region        string
	Endpoint      string
	TemplateType  string
	Include       string
	Exclude       string
	Concurrency   int
	Timeout       time.Duration
	OutputResults bool
	ResultsFile   string
	SARIF         string
	NoColor       bool
	Threshold     types.Threshold
}

// MergeThresholds resolves each level from the first layer that sets it.
// Layers are given highest precedence first; nil layers are skipped.
func MergeThresholds(layers ...*Thresholds) types.Threshold {
	th := types.Threshold{}
	for _, l := range types.RiskLevels {
		for _, layer := range layers {
			if v := layer.Get(l); v != nil {
				th[l] = *v
				break
			}
		}
	}
	return th
}

// Set stores v as the maximum for l.
func (t *Thresholds) Set(l types.RiskLevel, v *int) {
	switch l {
	case types.RiskExtreme:
		t.Extreme = v
	case types.RiskVeryHigh:
		t.VeryHigh = v
	case types.RiskHigh:
		t.High = v
	case types.RiskMedium:
		t.Medium = v
	case types.RiskLow:
		t.Low = v
	}
}
