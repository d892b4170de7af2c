// Package shell provides the "sheetkit shell" interactive REPL command.
package shell

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	shellpkg "github.com/klytics/sheetkit/internal/shell"
)

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var evalCmd string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive sheetkit shell",
		Long: `Start an interactive REPL over one sheet.

Bounds are fetched once and cached until a write, a column change or a new
sheet. Starting a plot cancels one still in flight. Tab completion offers
commands, plot modes and cached header names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			session := shellpkg.NewSession(a.Ctrl, a.Stdout)
			if evalCmd != "" {
				if _, err := session.Eval(ctx, evalCmd); err != nil && !errors.Is(err, shellpkg.ErrExit) {
					return app.Reported(err)
				}
				return nil
			}
			return session.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single shell command and exit")
	return cmd
}
