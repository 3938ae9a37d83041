package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/render/styles"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for treesplit.

Bash:
  $ source <(treesplit completion bash)

Zsh:
  $ treesplit completion zsh > "${fpath[1]}/_treesplit"

Fish:
  $ treesplit completion fish > ~/.config/fish/completions/treesplit.fish

PowerShell:
  PS> treesplit completion powershell | Out-String | Invoke-Expression

Start a new shell for the completions to take effect.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// flagValues lists the completions offered for flags with a fixed set of
// values.
func flagValues() map[string][]string {
	return map[string][]string{
		"palette": palette.Names(),
		"style":   styles.Names(),
		"format":  pipeline.FormatNames(),
		"sample":  {"small", "medium", "large", "very-large"},
	}
}

// registerCompletions attaches value completions to every command that
// defines one of the flags in flagValues.
func registerCompletions(root *cobra.Command) {
	values := flagValues()
	var walk func(*cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, vals := range values {
			if cmd.Flags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(vals, cobra.ShellCompDirectiveNoFileComp))
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}
