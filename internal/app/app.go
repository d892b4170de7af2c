// Package app wires configuration, the sheet backend and the controller for
// the CLI commands. Flags override config values.
package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetkit/internal/config"
	"github.com/klytics/sheetkit/internal/controller"
	"github.com/klytics/sheetkit/internal/logging"
	"github.com/klytics/sheetkit/internal/output"
	"github.com/klytics/sheetkit/internal/plot"
	"github.com/klytics/sheetkit/internal/telemetry"
)

// App is everything a command needs to run controller actions.
type App struct {
	Config  *config.Config
	Backend controller.Backend
	Ctrl    *controller.Controller
	Log     zerolog.Logger
	JSON    bool

	// Stdout receives status lines and results; tests swap it.
	Stdout io.Writer
}

// FromCommand builds an App from the persistent root flags and loaded config.
func FromCommand(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	jsonFlag, _ := flags.GetBool("json")
	verbose, _ := flags.GetBool("verbose")
	server, _ := flags.GetString("server")
	sheet, _ := flags.GetString("sheet")
	xlsx, _ := flags.GetString("xlsx")

	if server == "" {
		server = cfg.Server.URL
	}
	if sheet == "" {
		sheet = cfg.Sheet.ID
	}
	if xlsx == "" {
		xlsx = cfg.Workbook
	}
	if !cfg.Output.Color {
		color.NoColor = true
	}

	log := logging.New(cmd.ErrOrStderr(), verbose)
	a := &App{
		Config: cfg,
		Backend: controller.Backend{
			ServerURL: server,
			Workbook:  xlsx,
			Timeout:   cfg.Timeout(),
		},
		Log:    log,
		JSON:   jsonFlag,
		Stdout: cmd.OutOrStdout(),
	}

	svc, err := a.Backend.Open()
	if err != nil {
		return nil, err
	}

	var rec telemetry.Recorder = telemetry.Discard{}
	if cfg.Telemetry.Enabled {
		rec = telemetry.DefaultStore()
	}

	// JSON output owns stdout; status lines are kept in memory only.
	statusOut := a.Stdout
	if jsonFlag {
		statusOut = nil
	}

	a.Ctrl = controller.New(svc, controller.Config{
		SheetID:       sheet,
		SheetOptional: a.Backend.Local(),
		Plot: plot.Options{
			Bins:          cfg.Plot.Bins,
			TopK:          cfg.Plot.TopK,
			PieTopK:       cfg.Plot.PieTopK,
			IncludeOthers: cfg.Plot.IncludeOthers,
		},
		Width:    cfg.Chart.Width,
		Height:   cfg.Chart.Height,
		Status:   controller.NewStatus(statusOut),
		Logger:   &log,
		Recorder: rec,
	})

	log.Debug().
		Str("server", server).
		Str("workbook", xlsx).
		Str("sheet", a.Ctrl.SheetID()).
		Dur("timeout", cfg.Timeout()).
		Msg("controller ready")
	return a, nil
}

// Run dispatches one action. With --json the outcome data (or the error) is
// printed as the standard envelope under name.
func (a *App) Run(cmd *cobra.Command, name string, action controller.Action, req controller.Request) (*controller.Outcome, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	out, err := a.Ctrl.Dispatch(ctx, action, req)
	a.Log.Debug().Str("command", name).Dur("took", time.Since(start)).Msg("command finished")

	if a.JSON {
		if err != nil {
			output.FprintJSONError(a.Stdout, name, err)
			return nil, Reported(err)
		}
		var data any
		if out != nil {
			data = out.Data
		}
		return out, output.FprintJSON(a.Stdout, name, data)
	}
	if err != nil {
		// Already on the status line.
		return nil, Reported(err)
	}
	return out, nil
}

// reportedError marks an error the user has already seen.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported wraps err so Execute sets the exit code without printing it twice.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
