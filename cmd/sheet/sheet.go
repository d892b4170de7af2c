// Package sheet provides the "sheetkit sheet" commands for reading and writing cells.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/app"
	"github.com/klytics/sheetkit/internal/controller"
	"github.com/klytics/sheetkit/internal/progress"
	"github.com/klytics/sheetkit/internal/sheetapi"
)

// NewCommand returns the sheet command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Read and write spreadsheet cells",
		Long: `Inspect and edit the spreadsheet selected with --sheet (or config sheet.id).

Example:
  sheetkit sheet bounds --sheet https://docs.google.com/spreadsheets/d/<id>/edit
  sheetkit sheet cell 2 B
  sheetkit sheet set-cell 2 score 17
  sheetkit sheet column team --json`,
	}

	cmd.AddCommand(newBoundsCommand())
	cmd.AddCommand(newAddColsCommand())
	cmd.AddCommand(newCellCommand())
	cmd.AddCommand(newSetCellCommand())
	cmd.AddCommand(newColumnCommand())

	return cmd
}

func newBoundsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds",
		Short: "Show the last row, last column and header names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd, "sheet bounds", controller.ActionBounds, controller.Request{})
			return err
		},
	}
}

func newAddColsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-cols",
		Short: "Run the service's derived-columns job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd, "sheet add-cols", controller.ActionAddCols, controller.Request{})
			return err
		},
	}
}

func newCellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cell <row> <col>",
		Short: "Read one cell",
		Long:  "Reads one cell. <col> is a letter A-Z or a header name.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd, "sheet cell", controller.ActionCell, controller.Request{Row: row, Col: args[1]})
			return err
		},
	}
}

func newSetCellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-cell <row> <col> [value]",
		Short: "Write one cell",
		Long:  "Writes one cell. The service decides the stored type; an omitted value clears the cell.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			value := ""
			if len(args) == 3 {
				value = args[2]
			}
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd, "sheet set-cell", controller.ActionSetCell,
				controller.Request{Row: row, Col: args[1], Value: value})
			return err
		},
	}
}

func newColumnCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "column <col>",
		Short: "Print every value of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			var res *controller.Outcome
			err = progress.While("Fetching column "+args[0], a.JSON, func() error {
				var runErr error
				res, runErr = a.Run(cmd, "sheet column", controller.ActionValues, controller.Request{Col: args[0]})
				return runErr
			})
			if err != nil || a.JSON {
				return err
			}

			out := cmd.OutOrStdout()
			col := res.Data.(*sheetapi.Column)
			dim := color.New(color.FgHiBlack)
			for i, v := range col.Strings() {
				if limit > 0 && i >= limit {
					dim.Fprintf(out, "  … %d more\n", len(col.Values)-limit)
					break
				}
				// Values start below the header row.
				dim.Fprintf(out, "%6d  ", i+2)
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Print at most this many values")
	return cmd
}

func parseRow(s string) (int, error) {
	row, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("row must be a number, got %q", s)
	}
	return row, nil
}
