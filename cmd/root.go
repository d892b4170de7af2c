// Package cmd contains all CLI commands for the sheetkit binary.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/cmd/completion"
	cmdconfig "github.com/klytics/sheetkit/cmd/config"
	"github.com/klytics/sheetkit/cmd/plot"
	"github.com/klytics/sheetkit/cmd/sheet"
	"github.com/klytics/sheetkit/cmd/shell"
	"github.com/klytics/sheetkit/cmd/stats"
	"github.com/klytics/sheetkit/cmd/version"
	cmdwatch "github.com/klytics/sheetkit/cmd/watch"
	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	serverURL  string
	sheetID    string
	xlsxPath   string
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetkit",
		Short: "Inspect, edit and chart spreadsheet columns from the terminal",
		Long: `sheetkit — a control surface for a spreadsheet service.

Read sheet bounds and single cells, write cells, run the derived-columns job,
and chart any column as a bar or pie chart exported to PNG or PDF.
Point --xlsx at a local workbook to work offline (read-only).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Sheet service URL (default from config server.url)")
	rootCmd.PersistentFlags().StringVar(&sheetID, "sheet", "", "Spreadsheet URL or ID (default from config sheet.id)")
	rootCmd.PersistentFlags().StringVar(&xlsxPath, "xlsx", "", "Read from a local .xlsx workbook instead of the service")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(sheet.NewCommand())
	rootCmd.AddCommand(plot.NewCommand())
	rootCmd.AddCommand(shell.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(stats.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !app.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		stop()
		os.Exit(output.ExitCode(err))
	}
}
