package cli

import (
	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cfgsync.

To load completions:

Bash:
  $ source <(cfgsync completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cfgsync completion bash > /etc/bash_completion.d/cfgsync

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ cfgsync completion zsh > "${fpath[1]}/_cfgsync"

Fish:
  $ cfgsync completion fish > ~/.config/fish/completions/cfgsync.fish

PowerShell:
  PS> cfgsync completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> cfgsync completion powershell > cfgsync.ps1
  # and source this file from your PowerShell profile.
`,
		// completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}
