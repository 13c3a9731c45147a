package templatescan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/log"
)

var (
	flagConfig        string
	flagVerbose       bool
	flagLogFormat     string
	flagNoColor       bool
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// exitError carries a process exit code without an error message; the run
// has already reported why it failed.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// errNonCompliant is returned when at least one template fails the gate.
var errNonCompliant = exitError{code: 1}

// rootCmd is the base Cobra command. Without a subcommand it runs a scan.
var rootCmd = &cobra.Command{
	Use:   "templatescan",
	Short: "Gate a pipeline on cloud posture findings in IaC templates",
	Long: "templatescan submits CloudFormation or Terraform templates to the Cloud Posture " +
		"template scanner, counts failing checks per risk level and fails the pipeline when " +
		"a configured maximum is exceeded.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		slog.SetDefault(log.New(cmd.ErrOrStderr(), flagVerbose, flagLogFormat))
	},
	RunE: runScan,
}

// Execute runs the CLI. It should be called by the main package.
func Execute() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with the given arguments and returns the exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	registerFlagCompletions()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	slog.Error("templatescan failed", "error", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (replaces .templatescan.yml and the global config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging, including raw scan results")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format: text | json")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable the new release notice")
}
