// Package stats provides the "sheetkit stats" command over the local timing history.
package stats

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/output"
	"github.com/klytics/sheetkit/internal/telemetry"
)

// NewCommand returns the stats command.
func NewCommand() *cobra.Command {
	var clearHistory bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded action timings",
		Long: `Shows how often each action ran, how often it failed and how long it took,
both end to end and as reported by the service. History is kept locally in
~/.sheetkit/history.jsonl; disable with 'sheetkit config set telemetry.enabled false'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			store := telemetry.DefaultStore()
			out := cmd.OutOrStdout()

			if clearHistory {
				if err := store.Clear(); err != nil {
					return fmt.Errorf("could not clear history: %w", err)
				}
				if jsonFlag {
					return output.FprintJSON(out, "stats", map[string]bool{"cleared": true})
				}
				fmt.Fprintln(out, "History cleared")
				return nil
			}

			stats, err := store.Summary()
			if err != nil {
				return err
			}
			if jsonFlag {
				return output.FprintJSON(out, "stats", stats)
			}

			if stats.Total == 0 {
				color.New(color.FgHiBlack).Fprintln(out, "No actions recorded yet.")
				return nil
			}

			bold := color.New(color.Bold)
			bold.Fprintf(out, "%-10s %7s %7s %10s %10s\n", "ACTION", "COUNT", "ERRORS", "AVG MS", "SERVER MS")
			for _, a := range stats.Actions {
				fmt.Fprintf(out, "%-10s %7d ", a.Action, a.Count)
				if a.Errors > 0 {
					color.New(color.FgRed).Fprintf(out, "%7d", a.Errors)
				} else {
					fmt.Fprintf(out, "%7d", a.Errors)
				}
				fmt.Fprintf(out, " %10.1f %10.1f\n", a.AvgMs, a.AvgServerMs)
			}
			color.New(color.FgHiBlack).Fprintf(out, "\n%d actions, %d errors — %s (%d bytes)\n",
				stats.Total, stats.Errors, store.Path, store.Size())
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearHistory, "clear", false, "Delete the recorded history")
	return cmd
}
