package core

import (
	"context"
	"time"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/engine"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/report"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner/factory"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Report    = types.Report
	Outcome   = types.Outcome
	Finding   = types.Finding
	Tally     = types.Tally
	Threshold = types.Threshold
	RiskLevel = types.RiskLevel
	Decision  = report.Decision

	// Result is a finished run: the decision with the report it was made on.
	Result = report.Summary
)

const (
	RiskExtreme  = types.RiskExtreme
	RiskVeryHigh = types.RiskVeryHigh
	RiskHigh     = types.RiskHigh
	RiskMedium   = types.RiskMedium
	RiskLow      = types.RiskLow
)

// Config describes one gated run. Exactly one of TemplatePath and
// TemplatesDir is normally set; TemplatesDir wins when both are.
type Config struct {
	APIKey    string
	AccountID string
	Region    string
	Endpoint  string

	TemplatePath    string
	TemplatesDir    string
	IncludeGlobs    string
	ExcludeGlobs    string
	DefaultExcludes bool
	// TemplateType is cloudformation-template (default), terraform-template
	// or auto.
	TemplateType string

	Concurrency int
	Timeout     time.Duration

	Threshold Threshold
}

// Scan resolves and scans the configured templates and decides whether
// they pass cfg.Threshold. The error is only set when the run could not
// start; templates that fail to scan make the decision non-compliant.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	typ, err := scanner.ParseTemplateType(cfg.TemplateType)
	if err != nil {
		return Result{}, err
	}
	for _, globs := range []string{cfg.IncludeGlobs, cfg.ExcludeGlobs} {
		if err := engine.ValidateGlobs(globs); err != nil {
			return Result{}, err
		}
	}
	scnr, err := factory.New(factory.Config{
		APIKey:    cfg.APIKey,
		AccountID: cfg.AccountID,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return Result{}, err
	}
	rep, err := engine.Run(ctx, engine.Config{
		TemplatePath:    cfg.TemplatePath,
		TemplatesDir:    cfg.TemplatesDir,
		IncludeGlobs:    cfg.IncludeGlobs,
		ExcludeGlobs:    cfg.ExcludeGlobs,
		DefaultExcludes: cfg.DefaultExcludes,
		TemplateType:    typ,
		Concurrency:     cfg.Concurrency,
	}, scnr)
	if err != nil {
		return Result{}, err
	}
	return Result{Decision: report.Decide(rep, cfg.Threshold), Report: rep}, nil
}

// Exceeded returns the levels of t above their maximum in th, most severe
// first.
func Exceeded(t Tally, th Threshold) []RiskLevel { return report.Exceeded(t, th) }
