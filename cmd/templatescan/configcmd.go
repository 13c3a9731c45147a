package templatescan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/config"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/files"
)

var (
	cfgOutput      string
	cfgDir         string
	cfgRegion      string
	cfgType        string
	cfgConcurrency int
	cfgPreset      string
	cfgGitignore   bool
	cfgForce       bool
)

// thresholdPresets are starting points for config init.
var thresholdPresets = map[string]config.Thresholds{
	"strict":   {Extreme: intZero(), VeryHigh: intZero(), High: intZero(), Medium: intZero(), Low: intZero()},
	"standard": {Extreme: intZero(), VeryHigh: intZero(), High: intZero()},
	"lenient":  {Extreme: intZero()},
}

func intZero() *int {
	v := 0
	return &v
}

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .templatescan.yml with thresholds and options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().StringVar(&cfgDir, "dir", "", "templates directory to scan")
	initCmd.Flags().StringVar(&cfgRegion, "region", "us", "service region")
	initCmd.Flags().StringVar(&cfgType, "type", "", "template type: cloudformation-template | terraform-template | auto")
	initCmd.Flags().IntVar(&cfgConcurrency, "concurrency", 0, "templates scanned in parallel (0 = default)")
	initCmd.Flags().StringVar(&cfgPreset, "preset", "standard", "threshold preset: strict | standard | lenient")
	initCmd.Flags().BoolVar(&cfgGitignore, "gitignore", true, "add the files a run writes to .gitignore")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	th, ok := thresholdPresets[cfgPreset]
	if !ok {
		return fmt.Errorf("unknown --preset %q. Supported: strict, standard, lenient", cfgPreset)
	}
	if !cfgForce {
		if _, err := os.Stat(cfgOutput); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", cfgOutput)
		}
	}
	fc := config.FileConfig{
		TemplatesDir: optStrPtr(cfgDir),
		Region:       strPtr(cfgRegion),
		TemplateType: optStrPtr(cfgType),
		Concurrency:  intPtr(cfgConcurrency),
		ResultsFile:  strPtr("results.json"),
		Thresholds:   &th,
	}
	if err := fc.Validate(); err != nil {
		return err
	}
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)

	if cfgGitignore {
		added, err := files.AppendIgnore(filepath.Dir(cfgOutput), files.ArtifactIgnores("")...)
		if err != nil {
			return err
		}
		if len(added) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Added to .gitignore:", added)
		}
	}
	return nil
}
