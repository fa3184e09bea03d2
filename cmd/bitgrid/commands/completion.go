package commands

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for bitgrid.

To load completions:

Bash:
  $ bitgrid completion bash > ~/.local/share/bash-completion/completions/bitgrid
  $ source ~/.local/share/bash-completion/completions/bitgrid

Zsh:
  $ bitgrid completion zsh > ~/.zsh/completion/_bitgrid
  $ echo 'fpath=(~/.zsh/completion $fpath)' >> ~/.zshrc
  $ echo 'autoload -Uz compinit && compinit' >> ~/.zshrc

Fish:
  $ bitgrid completion fish > ~/.config/fish/completions/bitgrid.fish

PowerShell:
  PS> bitgrid completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
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
}

// registerDeviceCompletions completes the global --device flag. It must run
// after the flag is defined.
func registerDeviceCompletions() {
	rootCmd.RegisterFlagCompletionFunc("device", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"auto\tAuto-detect best device",
			"cpu\tHost memory",
			"gpu\tMetal on macOS, CUDA on Linux",
			"metal\tMetal GPU (macOS)",
			"cuda\tCUDA GPU (Linux)",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
