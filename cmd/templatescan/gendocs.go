package templatescan

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/config"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner/cloudposture"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/types"
)

var (
	docsStart = []byte("<!-- BEGIN:CONFIGURATION -->")
	docsEnd   = []byte("<!-- END:CONFIGURATION -->")
)

// envDocs describes the environment variables read by a scan.
var envDocs = []struct{ name, desc string }{
	{config.EnvAPIKey, "API key of the Cloud Posture service (required)"},
	{config.EnvTemplatePath, "template file to scan"},
	{config.EnvTemplatesDir, "directory of templates to scan; wins over " + config.EnvTemplatePath},
	{config.EnvAccountID, "account whose rule configuration applies"},
	{config.EnvOutputResults, "any non-empty value prints one line per failing check"},
	{config.EnvRegion, "service region"},
	{config.EnvEndpoint, "service base URL, overrides the region"},
	{config.EnvTemplateType, "cloudformation-template (default), terraform-template or auto"},
	{config.EnvResultsFile, "raw results file, default results.json"},
}

func init() {
	cmd := &cobra.Command{
		Use:    "gendocs [README.md]",
		Short:  "Regenerate the README configuration section",
		Args:   cobra.MaximumNArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "README.md"
			if len(args) == 1 {
				path = args[0]
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			updated, err := replaceDocsSection(b, configurationDocs())
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := os.WriteFile(path, updated, 0644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated", path)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}

// configurationDocs renders the environment variables, regions and scan
// flags as Markdown.
func configurationDocs() string {
	var out strings.Builder
	out.WriteString("\n| Variable | Meaning |\n|---|---|\n")
	for _, e := range envDocs {
		fmt.Fprintf(&out, "| `%s` | %s |\n", e.name, e.desc)
	}
	for _, l := range types.RiskLevels {
		fmt.Fprintf(&out, "| `%s` | maximum accepted %s findings; unset means unbounded |\n", config.MaxEnvVars[l], l)
	}

	regions := regionNames()
	out.WriteString("\nRegions: `" + strings.Join(regions, "`, `") + "` (default `" + cloudposture.DefaultRegion + "`).\n")

	out.WriteString("\nFlags of `templatescan scan`:\n\n```\n")
	var flags []string
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		flags = append(flags, fmt.Sprintf("--%s\t%s", f.Name, f.Usage))
	})
	out.WriteString(strings.Join(flags, "\n"))
	out.WriteString("\n```\n")
	return out.String()
}

func replaceDocsSection(b []byte, section string) ([]byte, error) {
	i := bytes.Index(b, docsStart)
	j := bytes.Index(b, docsEnd)
	if i < 0 || j < 0 || j <= i {
		return nil, fmt.Errorf("markers %s and %s not found", docsStart, docsEnd)
	}
	var nb bytes.Buffer
	nb.Write(b[:i])
	nb.Write(docsStart)
	nb.WriteString("\n")
	nb.WriteString(section)
	nb.Write(docsEnd)
	nb.Write(b[j+len(docsEnd):])
	return nb.Bytes(), nil
}
