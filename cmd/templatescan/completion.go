package templatescan

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/spf13/cobra"

	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner"
	"github.com/igorschultz/cloud-posture-template-scanner-pipeline/internal/scanner/cloudposture"
)

func init() {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Long:      "Generate shell completion scripts. Besides commands and flags, they complete the values of --type, --region, --log-format, --provider and --preset.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletionV2(out, true)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
templatescan completion bash > /etc/bash_completion.d/templatescan

# Zsh
templatescan completion zsh > "${fpath[1]}/_templatescan"
`,
	}
	rootCmd.AddCommand(cmd)
}

var completionsOnce sync.Once

// registerFlagCompletions offers the fixed choices of enum-like flags. It
// runs once before the first execution, when every init has added its flags.
func registerFlagCompletions() {
	completionsOnce.Do(func() {
		typeNames := []string{string(scanner.TypeCloudFormation), string(scanner.TypeTerraform), string(scanner.TypeAuto)}
		register(rootCmd, "type", typeNames)
		register(rootCmd, "region", regionNames())
		register(rootCmd, "log-format", []string{"text", "json"})

		if c, _, err := rootCmd.Find([]string{"ci", "init"}); err == nil {
			register(c, "provider", slices.Sorted(maps.Keys(ciTemplates)))
		}
		if c, _, err := rootCmd.Find([]string{"config", "init"}); err == nil {
			register(c, "preset", slices.Sorted(maps.Keys(thresholdPresets)))
			register(c, "region", regionNames())
			register(c, "type", typeNames)
		}
	})
}

func register(c *cobra.Command, flag string, choices []string) {
	err := c.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not register completion for --"+flag+":", err)
	}
}

// regionNames returns the known service regions, sorted.
func regionNames() []string {
	return slices.Sorted(maps.Keys(cloudposture.Regions))
}
