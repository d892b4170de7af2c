// Package watch provides the "sheetkit watch" command.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/controller"
	"github.com/klytics/sheetkit/internal/output"
	"github.com/klytics/sheetkit/internal/plot"
	"github.com/klytics/sheetkit/internal/render"
	w "github.com/klytics/sheetkit/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		kind     string
		mode     string
		outPath  string
		debounce int
	)

	cmd := &cobra.Command{
		Use:   "watch <col>",
		Short: "Re-plot a column whenever the local workbook is saved",
		Long: `Watch the workbook given with --xlsx (or the project file's workbook) and
redraw the chart of <col> after every save, re-exporting it when --out is set.

Example:
  sheetkit watch score --xlsx survey.xlsx --out score.png
  sheetkit watch team --xlsx survey.xlsx --kind pie --out teams.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := render.ParseKind(kind)
			if err != nil {
				return err
			}
			m, err := plot.ParseMode(mode)
			if err != nil {
				return err
			}
			if ext := strings.ToLower(filepath.Ext(outPath)); outPath != "" && ext != ".png" && ext != ".pdf" {
				return fmt.Errorf("--out must end in .png or .pdf, got %q", outPath)
			}

			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			if !a.Backend.Local() {
				return fmt.Errorf("watch needs a local workbook — pass --xlsx <file.xlsx>")
			}

			watcher, err := w.New(w.Config{Files: []string{a.Backend.Workbook}, Debounce: debounce})
			if err != nil {
				return err
			}
			watcher.Logger = a.Log

			replot := &w.Replotter{
				Ctrl:    a.Ctrl,
				Request: controller.PlotRequest{Col: args[0], Kind: k, Mode: m},
				Output:  outPath,
			}
			watcher.Handler = replot.Handle

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			// Draw once so the output exists before the first save.
			if err := replot.Handle(ctx, a.Backend.Workbook); err != nil {
				watcher.Close()
				return app.Reported(err)
			}

			if !a.JSON {
				color.New(color.FgCyan).Fprintf(a.Stdout, "Watching %s (Ctrl+C to stop)\n", a.Backend.Workbook)
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}

			if a.JSON {
				return output.FprintJSON(a.Stdout, "watch", map[string]any{
					"status": watcher.GetStatus(),
					"events": watcher.GetEvents(),
				})
			}
			fmt.Fprintf(a.Stdout, "\nStopped after %d change(s).\n", len(watcher.GetEvents()))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "bar", "Chart type: bar | pie")
	cmd.Flags().StringVar(&mode, "mode", "auto", "Bar mode: auto | category | numeric | value | hist")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Re-export the chart to this .png or .pdf on every change")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Milliseconds to wait after the last write")
	return cmd
}
