// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var installHints = map[string]string{
	"bash":       "sheetkit completion bash > /etc/bash_completion.d/sheetkit",
	"zsh":        "sheetkit completion zsh > ~/.zsh/completions/_sheetkit",
	"fish":       "sheetkit completion fish > ~/.config/fish/completions/sheetkit.fish",
	"powershell": "sheetkit completion powershell >> $PROFILE",
}

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for sheetkit.

Install instructions:
  Bash:       ` + installHints["bash"] + `
              echo 'source <(sheetkit completion bash)' >> ~/.bashrc
  Zsh:        ` + installHints["zsh"] + `
  Fish:       ` + installHints["fish"] + `
  PowerShell: ` + installHints["powershell"],
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(rootCmd, cmd.OutOrStdout(), args[0])
		},
	}
}

func generate(rootCmd *cobra.Command, w io.Writer, shell string) error {
	hint, ok := installHints[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
	}
	fmt.Fprintf(w, "# sheetkit %s completion\n# Install: %s\n\n", shell, hint)

	switch shell {
	case "bash":
		return rootCmd.GenBashCompletion(w)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	default:
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	}
}
