package templatescan

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/audit"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/config"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/engine"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/git"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/report"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner/factory"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/update"
)

var (
	flagTemplate        string
	flagDir             string
	flagAccountID       string
	flagOutputResults   bool
	flagRegion          string
	flagEndpoint        string
	flagType            string
	flagConcurrency     int
	flagTimeout         time.Duration
	flagInclude         string
	flagExclude         string
	flagDefaultExcludes bool
	flagResultsFile     string
	flagSARIF           string
	flagTable           bool
	flagJSON            bool
	flagUploadURL       string
	flagUploadToken     string
	flagNoUploadMeta    bool
	flagAuditLog        string

	flagMax = map[types.RiskLevel]*int{}
)

// maxFlagNames maps each risk level to its threshold flag.
var maxFlagNames = map[types.RiskLevel]string{
	types.RiskExtreme:  "max-extreme",
	types.RiskVeryHigh: "max-very-high",
	types.RiskHigh:     "max-high",
	types.RiskMedium:   "max-medium",
	types.RiskLow:      "max-low",
}

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan templates and fail when a threshold is exceeded",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	f := rootCmd.Flags()
	f.StringVarP(&flagTemplate, "template", "t", "", "template file to scan (env templatePath)")
	f.StringVarP(&flagDir, "dir", "d", "", "directory of templates to scan; wins over --template (env templatesDirPath)")
	f.StringVar(&flagAccountID, "account-id", "", "account whose rule configuration applies (env accountId)")
	for _, l := range types.RiskLevels {
		v := new(int)
		flagMax[l] = v
		f.IntVar(v, maxFlagNames[l], 0, fmt.Sprintf("maximum accepted %s findings (env %s, unset = unbounded)", l, config.MaxEnvVars[l]))
	}
	f.BoolVar(&flagOutputResults, "output-results", false, "print one line per failing check (env cc_output_results)")
	f.StringVar(&flagRegion, "region", "", "service region: us | eu | jp | sg | au | in | mea (env v1_region)")
	f.StringVar(&flagEndpoint, "endpoint", "", "service base URL, overrides --region (env v1_endpoint)")
	f.StringVar(&flagType, "type", "", "template type: cloudformation-template | terraform-template | auto (env templateType)")
	f.IntVar(&flagConcurrency, "concurrency", 0, fmt.Sprintf("templates scanned in parallel (default %d)", engine.DefaultConcurrency))
	f.DurationVar(&flagTimeout, "timeout", 0, "per-request timeout, e.g. 30s (0 = none)")
	f.StringVar(&flagInclude, "include", "", "comma-separated include globs (directory mode)")
	f.StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs (directory mode)")
	f.BoolVar(&flagDefaultExcludes, "default-excludes", false, "skip docs, images, archives and hidden files in directory mode (each skipped file is logged)")
	f.StringVar(&flagResultsFile, "results-file", "", "where to write raw results (env cc_results_file, default results.json)")
	f.StringVar(&flagSARIF, "sarif", "", "also write SARIF 2.1.0 to this file")
	f.BoolVar(&flagTable, "table", false, "print a summary table after the report")
	f.BoolVar(&flagJSON, "json", false, "print the decision and report as JSON instead of text")
	f.StringVar(&flagUploadURL, "upload", "", "POST the report (JSON) to this URL after the scan")
	f.StringVar(&flagUploadToken, "upload-token", "", "Bearer token for upload auth")
	f.BoolVar(&flagNoUploadMeta, "no-upload-metadata", false, "do not include repo/commit/branch in the upload envelope")
	f.StringVar(&flagAuditLog, "audit-log", "", "append a JSON line summarizing the run to this file")

	cmd.Flags().AddFlagSet(f)
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()
	cwd, _ := os.Getwd()

	s, err := resolveSettings(cmd, os.LookupEnv)
	if err != nil {
		return err
	}
	typ, err := scanner.ParseTemplateType(s.TemplateType)
	if err != nil {
		return err
	}
	for _, globs := range []string{s.Include, s.Exclude} {
		if err := engine.ValidateGlobs(globs); err != nil {
			return err
		}
	}

	scnr, err := factory.New(factory.Config{
		APIKey:    s.APIKey,
		AccountID: s.AccountID,
		Region:    s.Region,
		Endpoint:  s.Endpoint,
		Timeout:   s.Timeout,
		Version:   version,
	})
	if err != nil {
		return err
	}
	if !flagNoUpdateCheck && !flagJSON {
		if latest, newer, _ := update.Check(version, false); newer && latest != "" {
			slog.InfoContext(ctx, "new version available, run 'templatescan update' to upgrade", "latest", "v"+latest)
		}
	}

	rep, err := engine.Run(ctx, engine.Config{
		TemplatePath:    s.TemplatePath,
		TemplatesDir:    s.TemplatesDir,
		IncludeGlobs:    s.Include,
		ExcludeGlobs:    s.Exclude,
		DefaultExcludes: flagDefaultExcludes,
		TemplateType:    typ,
		Concurrency:     s.Concurrency,
	}, scnr)
	if err != nil {
		return fmt.Errorf("resolving templates: %w", err)
	}
	if err := report.WriteResults(s.ResultsFile, rep); err != nil {
		slog.WarnContext(ctx, "could not write results file", "error", err)
	}

	decision := report.Decide(rep, s.Threshold)
	if flagJSON {
		if err := report.WriteJSON(out, rep, decision); err != nil {
			return err
		}
	} else {
		opts := report.PrintOptions{OutputResults: s.OutputResults, NoColor: !colorEnabled(s.NoColor)}
		report.PrintText(out, rep, s.Threshold, opts)
		if flagTable {
			if err := report.PrintTable(out, rep, s.Threshold, opts); err != nil {
				return fmt.Errorf("table error: %w", err)
			}
		}
		fmt.Fprintln(out, decision.Message)
	}

	if s.SARIF != "" {
		if err := writeSARIF(s.SARIF, rep); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	}

	var md git.Metadata
	if flagAuditLog != "" || (flagUploadURL != "" && !flagNoUploadMeta) {
		md = git.RepoMetadata(cwd, os.LookupEnv)
	}
	if flagAuditLog != "" {
		rec := audit.NewRecord(rep, decision)
		rec.Repo, rec.Commit, rec.Branch = md.Repo, md.Commit, md.Branch
		if err := audit.New(flagAuditLog).Append(rec); err != nil {
			slog.WarnContext(ctx, "could not write audit log", "error", err)
		}
	}
	// Upload failures never change the verdict.
	if flagUploadURL != "" {
		if flagNoUploadMeta {
			md = git.Metadata{}
		}
		if err := uploadReport(ctx, flagUploadURL, flagUploadToken, md, rep, decision); err != nil {
			slog.WarnContext(ctx, "upload failed", "error", err)
		}
	}

	slog.InfoContext(ctx, "scan finished",
		"scan_id", rep.ScanID,
		"templates", len(rep.Outcomes),
		"compliant", decision.Compliant,
		"duration", rep.Duration)
	if !decision.Compliant {
		return errNonCompliant
	}
	return nil
}

// resolveSettings merges flags, environment and config files into the
// effective settings of the run.
func resolveSettings(cmd *cobra.Command, lookup func(string) (string, bool)) (config.Settings, error) {
	env, err := config.LoadEnv(lookup)
	if err != nil {
		return config.Settings{}, err
	}
	lcfg, gcfg, err := loadFileConfigs()
	if err != nil {
		return config.Settings{}, err
	}

	var ft config.Thresholds
	for _, l := range types.RiskLevels {
		name := maxFlagNames[l]
		if !cmd.Flags().Changed(name) {
			continue
		}
		v := *flagMax[l]
		if v < 0 {
			return config.Settings{}, fmt.Errorf("--%s: must not be negative, got %d", name, v)
		}
		ft.Set(l, &v)
	}
	if flagConcurrency < 0 {
		return config.Settings{}, fmt.Errorf("--concurrency: must not be negative, got %d", flagConcurrency)
	}
	timeout, err := pickDuration(flagTimeout, lcfg.Timeout, gcfg.Timeout)
	if err != nil {
		return config.Settings{}, err
	}

	return config.Settings{
		APIKey:        env.APIKey,
		TemplatePath:  pickString(flagTemplate, env.TemplatePath, lcfg.TemplatePath, gcfg.TemplatePath),
		TemplatesDir:  pickString(flagDir, env.TemplatesDir, lcfg.TemplatesDir, gcfg.TemplatesDir),
		AccountID:     pickString(flagAccountID, env.AccountID, lcfg.AccountID, gcfg.AccountID),
		Region:        pickString(flagRegion, env.Region, lcfg.Region, gcfg.Region),
		Endpoint:      pickString(flagEndpoint, env.Endpoint, lcfg.Endpoint, gcfg.Endpoint),
		TemplateType:  pickString(flagType, env.TemplateType, lcfg.TemplateType, gcfg.TemplateType),
		Include:       pickString(flagInclude, "", lcfg.Include, gcfg.Include),
		Exclude:       pickString(flagExclude, "", lcfg.Exclude, gcfg.Exclude),
		Concurrency:   pickInt(flagConcurrency, lcfg.Concurrency, gcfg.Concurrency),
		Timeout:       timeout,
		OutputResults: pickBool(flagOutputResults, cmd.Flags().Changed("output-results"), env.OutputResults, lcfg.OutputResults, gcfg.OutputResults),
		ResultsFile:   pickString(flagResultsFile, env.ResultsFile, lcfg.ResultsFile, gcfg.ResultsFile),
		SARIF:         pickString(flagSARIF, "", lcfg.SARIF, gcfg.SARIF),
		NoColor:       pickBool(flagNoColor, cmd.Flags().Changed("no-color"), nil, lcfg.NoColor, gcfg.NoColor),
		Threshold:     config.MergeThresholds(&ft, &env.Thresholds, lcfg.Thresholds, gcfg.Thresholds),
	}, nil
}

// loadFileConfigs returns the repo-local and global config files. An
// explicit --config replaces both.
func loadFileConfigs() (config.FileConfig, config.FileConfig, error) {
	if flagConfig != "" {
		c, err := config.LoadFile(flagConfig)
		return c, config.FileConfig{}, err
	}
	var lcfg, gcfg config.FileConfig
	cwd, _ := os.Getwd()
	c, err := config.LoadLocal(cwd)
	switch {
	case err == nil:
		lcfg = c
	case !errors.Is(err, config.ErrNoConfig):
		return lcfg, gcfg, err
	}
	c, err = config.LoadGlobal()
	switch {
	case err == nil:
		gcfg = c
	case !errors.Is(err, config.ErrNoConfig):
		return lcfg, gcfg, err
	}
	return lcfg, gcfg, nil
}

func writeSARIF(path string, rep types.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteSARIF(f, rep, version); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
