package commands

import (
	"github.com/spf13/cobra"
)

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for hsmv, including --output values.

To load completions:

Bash:
  $ source <(hsmv completion bash)
  # To load completions for each session, execute once:
  $ hsmv completion bash > /etc/bash_completion.d/hsmv

Zsh:
  $ hsmv completion zsh > "${fpath[1]}/_hsmv"

Fish:
  $ hsmv completion fish | source
  # To load completions for each session, execute once:
  $ hsmv completion fish > ~/.config/fish/completions/hsmv.fish

PowerShell:
  PS> hsmv completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
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
