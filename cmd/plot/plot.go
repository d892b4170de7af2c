// Package plot provides the "sheetkit plot" command.
package plot

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/controller"
	"github.com/klytics/sheetkit/internal/output"
	aggregate "github.com/klytics/sheetkit/internal/plot"
	"github.com/klytics/sheetkit/internal/progress"
	"github.com/klytics/sheetkit/internal/render"
)

// NewCommand returns the plot command.
func NewCommand() *cobra.Command {
	var (
		kind    string
		mode    string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "plot <col>",
		Short: "Chart a column as a bar or pie chart",
		Long: `Fetches a column, aggregates it and draws a chart.

Bar modes:
  auto      numeric columns get a distribution, text columns category counts
  category  top values by count
  numeric   exact value counts when few distinct values, else a histogram
  value     exact value counts
  hist      equal-width histogram

Pie charts show the top values with the rest grouped as "Others".
Use --out chart.png or --out chart.pdf to export (PDF is landscape A4).`,
		Example: `  sheetkit plot score --out score.png
  sheetkit plot team --kind pie --out teams.pdf
  sheetkit plot B --mode hist --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := render.ParseKind(kind)
			if err != nil {
				return err
			}
			m, err := aggregate.ParseMode(mode)
			if err != nil {
				return err
			}
			if outPath != "" && !isExportPath(outPath) {
				return fmt.Errorf("--out must end in .png or .pdf, got %q", outPath)
			}

			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}

			// Export status lines follow the plot's.
			jsonOut := a.JSON
			a.JSON = false
			var res *controller.Outcome
			err = progress.While("Plotting "+args[0], jsonOut, func() error {
				var runErr error
				res, runErr = a.Run(cmd, "plot", controller.ActionPlot, controller.Request{Col: args[0], Kind: k, Mode: m})
				return runErr
			})
			if err == nil && outPath != "" {
				action := controller.ActionPNG
				if strings.EqualFold(filepath.Ext(outPath), ".pdf") {
					action = controller.ActionPDF
				}
				_, err = a.Run(cmd, "plot", action, controller.Request{Path: outPath})
			}
			a.JSON = jsonOut

			if jsonOut {
				if err != nil {
					output.FprintJSONError(a.Stdout, "plot", err)
					return app.Reported(err)
				}
				return output.FprintJSON(a.Stdout, "plot", res.Data)
			}
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res.Data.(*controller.PlotResult))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "bar", "Chart type: bar | pie")
	cmd.Flags().StringVar(&mode, "mode", "auto", "Bar mode: auto | category | numeric | value | hist")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Export the chart to a .png or .pdf file")
	return cmd
}

func isExportPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".png" || ext == ".pdf"
}

// printResult draws the aggregation as a text bar chart. Only drawn charts
// reach it, so r is never empty.
func printResult(w io.Writer, res *controller.PlotResult) {
	r := res.Result

	width, peak := 0, 0
	for i, l := range r.Labels {
		if n := len([]rune(l)); n > width {
			width = n
		}
		if r.Counts[i] > peak {
			peak = r.Counts[i]
		}
	}
	if width > 32 {
		width = 32
	}

	bar := color.New(color.FgCyan)
	for i, label := range r.Labels {
		runes := []rune(label)
		if len(runes) > width {
			label = string(runes[:width-1]) + "~"
		}
		n := 0
		if peak > 0 {
			n = r.Counts[i] * 40 / peak
		}
		fmt.Fprintf(w, "  %-*s ", width, label)
		bar.Fprint(w, strings.Repeat("█", n))
		fmt.Fprintf(w, " %d\n", r.Counts[i])
	}
	color.New(color.FgHiBlack).Fprintf(w, "  (%d of %d values charted)\n", r.Total(), res.Values)
}
