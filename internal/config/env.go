package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// Environment variable names understood by the pipeline step.
const (
	EnvAPIKey        = "v1_apikey"
	EnvTemplatePath  = "templatePath"
	EnvTemplatesDir  = "templatesDirPath"
	EnvAccountID     = "accountId"
	EnvOutputResults = "cc_output_results"
	EnvResultsFile   = "cc_results_file"
	EnvRegion        = "v1_region"
	EnvEndpoint      = "v1_endpoint"
	EnvTemplateType  = "templateType"
)

// MaxEnvVars maps each risk level to the variable holding its threshold.
var MaxEnvVars = map[types.RiskLevel]string{
	types.RiskExtreme:  "maxExtreme",
	types.RiskVeryHigh: "maxVeryHigh",
	types.RiskHigh:     "maxHigh",
	types.RiskMedium:   "maxMedium",
	types.RiskLow:      "maxLow",
}

// Env is the configuration read once from the process environment. Empty
// strings and nil pointers mean "not set".
type Env struct {
	APIKey        string
	TemplatePath  string
	TemplatesDir  string
	AccountID     string
	Region        string
	Endpoint      string
	TemplateType  string
	ResultsFile   string
	OutputResults *bool
	Thresholds    Thresholds
}

// LoadEnv reads the pipeline variables through lookup, typically os.LookupEnv.
func LoadEnv(lookup func(string) (string, bool)) (Env, error) {
	get := func(k string) string {
		v, _ := lookup(k)
		return strings.TrimSpace(v)
	}
	env := Env{
		APIKey:       get(EnvAPIKey),
		TemplatePath: get(EnvTemplatePath),
		TemplatesDir: get(EnvTemplatesDir),
		AccountID:    get(EnvAccountID),
		Region:       get(EnvRegion),
		Endpoint:     get(EnvEndpoint),
		TemplateType: get(EnvTemplateType),
		ResultsFile:  get(EnvResultsFile),
	}
	if v, ok := lookup(EnvOutputResults); ok && v != "" {
		b := Truthy(v)
		env.OutputResults = &b
	}
	for _, l := range types.RiskLevels {
		name := MaxEnvVars[l]
		max, err := ParseMax(get(name))
		if err != nil {
			return env, fmt.Errorf("%s: %w", name, err)
		}
		env.Thresholds.Set(l, max)
	}
	return env, nil
}

// ParseMax parses a threshold value. An empty string is unbounded (nil).
func ParseMax(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid threshold %q: expected a non-negative integer", s)
	}
	if v < 0 {
		return nil, fmt.Errorf("invalid threshold %d: must not be negative", v)
	}
	return &v, nil
}

// Truthy reports whether a flag variable is set: any non-empty value is true,
// "false" and "0" included.
func Truthy(s string) bool {
	return strings.TrimSpace(s) != ""
}
