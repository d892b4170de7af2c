package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/klytics/sheetkit/internal/plot"
	"github.com/klytics/sheetkit/internal/render"
	"github.com/klytics/sheetkit/internal/telemetry"
)

// Action names a UI command.
type Action string

const (
	ActionSheet   Action = "sheet"
	ActionBounds  Action = "bounds"
	ActionAddCols Action = "add-cols"
	ActionCell    Action = "cell"
	ActionSetCell Action = "set-cell"
	ActionColumn  Action = "column"
	ActionValues  Action = "values"
	ActionPlot    Action = "plot"
	ActionPNG     Action = "png"
	ActionPDF     Action = "pdf"
)

// ErrUnknownAction is returned by Dispatch for names missing from the table.
var ErrUnknownAction = errors.New("unknown action")

// Request carries the inputs of any action; each handler reads the fields it needs.
type Request struct {
	Sheet string
	Row   int
	Col   string
	Value string
	Kind  render.Kind
	Mode  plot.Mode
	Path  string
}

// Outcome is what a handler reports back.
type Outcome struct {
	Message  string
	Data     any
	ServerMs int64
}

// Handler runs one action.
type Handler func(ctx context.Context, req Request) (*Outcome, error)

func (c *Controller) dispatchTable() map[Action]Handler {
	return map[Action]Handler{
		ActionSheet:   c.handleSheet,
		ActionBounds:  c.handleBounds,
		ActionAddCols: c.handleAddCols,
		ActionCell:    c.handleCell,
		ActionSetCell: c.handleSetCell,
		ActionColumn:  c.handleColumn,
		ActionValues:  c.handleValues,
		ActionPlot:    c.handlePlot,
		ActionPNG:     c.handleExport(false),
		ActionPDF:     c.handleExport(true),
	}
}

// Actions lists the registered actions in name order.
func (c *Controller) Actions() []Action {
	out := make([]Action, 0, len(c.handlers))
	for a := range c.handlers {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch runs action and reports the outcome on the status line. Panics in a
// handler are recovered and reported like any other error.
func (c *Controller) Dispatch(ctx context.Context, action Action, req Request) (out *Outcome, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("unexpected error in %s: %v", action, r)
			c.log.Error().Str("action", string(action)).Interface("panic", r).Msg("handler panicked")
		}
		c.finish(action, start, out, err)
	}()

	h, ok := c.handlers[action]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	c.log.Debug().Str("action", string(action)).Msg("dispatch")
	return h(ctx, req)
}

func (c *Controller) finish(action Action, start time.Time, out *Outcome, err error) {
	ev := telemetry.Event{
		Timestamp:  start,
		Action:     string(action),
		DurationMs: elapsed(start),
		OK:         err == nil,
	}
	if out != nil {
		ev.ServerMs = out.ServerMs
	}
	if !errors.Is(err, ErrUnknownAction) {
		c.rec.Record(ev)
	}

	switch {
	case errors.Is(err, ErrSuperseded):
		c.log.Debug().Str("action", string(action)).Msg("superseded")
		c.status.Info("%s", err)
	case err != nil:
		c.log.Debug().Str("action", string(action)).Err(err).Int64("ms", ev.DurationMs).Msg("failed")
		c.status.Error(err)
	case out != nil && out.Message != "":
		c.log.Debug().Str("action", string(action)).Int64("ms", ev.DurationMs).Msg("done")
		c.status.Info("%s", out.Message)
	}
}

func withMS(msg string, ms int64) string {
	if ms <= 0 {
		return msg
	}
	return fmt.Sprintf("%s (%d ms)", msg, ms)
}

func (c *Controller) handleSheet(_ context.Context, req Request) (*Outcome, error) {
	id, err := c.SetSheet(req.Sheet)
	if err != nil {
		return nil, err
	}
	return &Outcome{Message: "Sheet: " + id, Data: map[string]string{"sheetId": id}}, nil
}

func (c *Controller) handleBounds(ctx context.Context, _ Request) (*Outcome, error) {
	b, err := c.Bounds(ctx)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Bounds: %d rows × %d cols", b.LastRow, b.LastCol)
	if len(b.Headers) > 0 {
		msg += " — " + strings.Join(b.Headers, ", ")
	}
	return &Outcome{Message: withMS(msg, b.MS), Data: b, ServerMs: b.MS}, nil
}

func (c *Controller) handleAddCols(ctx context.Context, _ Request) (*Outcome, error) {
	res, err := c.AddCols(ctx)
	if err != nil {
		return nil, err
	}
	return &Outcome{Message: withMS(res.Message, res.MS), Data: res, ServerMs: res.MS}, nil
}

func (c *Controller) handleCell(ctx context.Context, req Request) (*Outcome, error) {
	cell, err := c.Cell(ctx, req.Row, req.Col)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("%s%d [%s] = %q (%s)", cell.Col, cell.Row, cell.FeatureName, string(cell.Value), cell.Type)
	return &Outcome{Message: withMS(msg, cell.MS), Data: cell, ServerMs: cell.MS}, nil
}

func (c *Controller) handleSetCell(ctx context.Context, req Request) (*Outcome, error) {
	res, err := c.SetCell(ctx, req.Row, req.Col, req.Value)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Wrote %s%d = %q (%s)", res.Col, res.Row, string(res.WrittenValue), res.WrittenType)
	return &Outcome{Message: withMS(msg, res.MS), Data: res, ServerMs: res.MS}, nil
}

func (c *Controller) handleColumn(ctx context.Context, req Request) (*Outcome, error) {
	letter, err := c.SelectColumn(ctx, req.Col)
	if err != nil {
		return nil, err
	}
	return &Outcome{Message: "Column: " + letter, Data: map[string]string{"col": letter}}, nil
}

func (c *Controller) handleValues(ctx context.Context, req Request) (*Outcome, error) {
	col, err := c.Column(ctx, req.Col)
	if err != nil {
		return nil, err
	}
	header := col.Header
	if header == "" {
		header = "(no header)"
	}
	msg := fmt.Sprintf("Column %s [%s]: %d values", col.Col, header, col.N)
	return &Outcome{Message: withMS(msg, col.MS), Data: col, ServerMs: col.MS}, nil
}

func (c *Controller) handlePlot(ctx context.Context, req Request) (*Outcome, error) {
	res, err := c.Plot(ctx, PlotRequest{Col: req.Col, Kind: req.Kind, Mode: req.Mode})
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Plotted %s [%s] as %s %s: %d values, %d groups",
		res.Col, res.Header, res.Mode, res.Kind, res.Values, res.Result.Len())
	return &Outcome{Message: withMS(msg, res.MS), Data: res, ServerMs: res.MS}, nil
}

func (c *Controller) handleExport(asPDF bool) Handler {
	return func(_ context.Context, req Request) (*Outcome, error) {
		if err := c.Export(req.Path, asPDF); err != nil {
			return nil, err
		}
		return &Outcome{Message: "Saved " + req.Path, Data: map[string]string{"path": req.Path}}, nil
	}
}
