// Package controller owns the state behind the sheet UI: the selected sheet and
// column, the cached sheet bounds and the chart canvas. UI surfaces (the CLI
// commands, the interactive shell, the file watcher) drive it through Dispatch.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/klytics/sheetkit/internal/plot"
	"github.com/klytics/sheetkit/internal/render"
	"github.com/klytics/sheetkit/internal/sheetapi"
	"github.com/klytics/sheetkit/internal/sheetid"
	"github.com/klytics/sheetkit/internal/telemetry"
)

var (
	// ErrNoSheet is returned by actions that need a sheet before one was chosen.
	ErrNoSheet = errors.New("no sheet selected — paste a sheet URL or ID first")
	// ErrSuperseded is returned by a plot that a newer plot request replaced.
	ErrSuperseded = errors.New("plot superseded by a newer request")
)

// Config configures a Controller. Zero values fall back to defaults.
type Config struct {
	SheetID string
	// SheetOptional lets actions run without a sheet ID (local workbooks
	// default to their first worksheet).
	SheetOptional bool

	Plot   plot.Options
	Width  int
	Height int

	Status   *Status
	Logger   *zerolog.Logger
	Recorder telemetry.Recorder
}

// Controller is safe for concurrent use. Actions may interleave; plots are
// serialized by sequence number so only the newest request draws.
type Controller struct {
	svc      Service
	status   *Status
	log      zerolog.Logger
	rec      telemetry.Recorder
	canvas   *render.Canvas
	opts     plot.Options
	optional bool
	handlers map[Action]Handler

	mu         sync.Mutex
	sheetID    string
	column     string
	bounds     *sheetapi.Bounds
	plotSeq    uint64
	cancelPlot context.CancelFunc
}

// New creates a controller over svc.
func New(svc Service, cfg Config) *Controller {
	if cfg.Status == nil {
		cfg.Status = NewStatus(nil)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = telemetry.Discard{}
	}
	if cfg.Plot == (plot.Options{}) {
		cfg.Plot = plot.DefaultOptions()
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	c := &Controller{
		svc:      svc,
		status:   cfg.Status,
		log:      log,
		rec:      cfg.Recorder,
		canvas:   render.NewCanvas(cfg.Width, cfg.Height),
		opts:     cfg.Plot,
		optional: cfg.SheetOptional,
	}
	if cfg.SheetID != "" {
		if id, err := sheetid.Parse(cfg.SheetID); err == nil {
			c.sheetID = id
		} else {
			c.sheetID = cfg.SheetID
		}
	}
	c.handlers = c.dispatchTable()
	return c
}

// Status returns the controller's status line.
func (c *Controller) Status() *Status { return c.status }

// Canvas returns the chart canvas.
func (c *Controller) Canvas() *render.Canvas { return c.canvas }

// SheetID returns the selected sheet ID.
func (c *Controller) SheetID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sheetID
}

// SelectedColumn returns the column chosen by SelectColumn, if any.
func (c *Controller) SelectedColumn() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.column
}

// SetSheet selects a sheet from a pasted URL or bare ID and drops cached state.
func (c *Controller) SetSheet(input string) (string, error) {
	id, err := sheetid.Parse(input)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	if id != c.sheetID {
		c.column = ""
	}
	c.sheetID = id
	c.bounds = nil
	c.mu.Unlock()
	return id, nil
}

// Invalidate drops the cached bounds. The next Bounds call hits the service.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.bounds = nil
	c.mu.Unlock()
}

// Cached returns the cached bounds without fetching.
func (c *Controller) Cached() *sheetapi.Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

func (c *Controller) currentSheet() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetID == "" && !c.optional {
		return "", ErrNoSheet
	}
	return c.sheetID, nil
}

// Bounds returns the sheet bounds, served from cache when the sheet is unchanged.
func (c *Controller) Bounds(ctx context.Context) (*sheetapi.Bounds, error) {
	id, err := c.currentSheet()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if b := c.bounds; b != nil && b.SheetID == id {
		c.mu.Unlock()
		c.log.Debug().Str("sheet", id).Msg("bounds cache hit")
		return b, nil
	}
	c.mu.Unlock()

	b, err := c.svc.Bounds(ctx, id)
	if err != nil {
		return nil, err
	}
	b.SheetID = id

	c.mu.Lock()
	if c.sheetID == id {
		c.bounds = b
	}
	c.mu.Unlock()
	return b, nil
}

// AddCols runs the service's derived-column job and invalidates the cache.
func (c *Controller) AddCols(ctx context.Context) (*sheetapi.AddColsResult, error) {
	id, err := c.currentSheet()
	if err != nil {
		return nil, err
	}
	defer c.Invalidate()
	return c.svc.AddCols(ctx, id)
}

// ResolveColumn accepts a column letter or a header name and returns the letter.
// Header names are matched case-insensitively against the cached bounds.
func (c *Controller) ResolveColumn(ctx context.Context, col string) (string, error) {
	if strings.TrimSpace(col) == "" {
		return "", fmt.Errorf("column is required")
	}
	if letter, err := sheetid.Column(col); err == nil {
		return letter, nil
	}

	b, err := c.Bounds(ctx)
	if err != nil {
		return "", err
	}
	want := strings.TrimSpace(col)
	for i, h := range b.Headers {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			if letter := sheetid.Letter(i + 1); letter != "" {
				return letter, nil
			}
		}
	}
	return "", fmt.Errorf("no column letter or header named %q (headers: %s)", col, strings.Join(b.Headers, ", "))
}

// SelectColumn sets the default column for plots. Changing it invalidates the cache.
func (c *Controller) SelectColumn(ctx context.Context, col string) (string, error) {
	letter, err := c.ResolveColumn(ctx, col)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	if letter != c.column {
		c.column = letter
		c.bounds = nil
	}
	c.mu.Unlock()
	return letter, nil
}

// Cell reads one cell after validating its coordinates.
func (c *Controller) Cell(ctx context.Context, row int, col string) (*sheetapi.Cell, error) {
	id, err := c.currentSheet()
	if err != nil {
		return nil, err
	}
	if err := sheetid.ValidateRow(row); err != nil {
		return nil, err
	}
	letter, err := c.ResolveColumn(ctx, col)
	if err != nil {
		return nil, err
	}
	return c.svc.Cell(ctx, id, row, letter)
}

// SetCell writes one cell and invalidates the cache.
func (c *Controller) SetCell(ctx context.Context, row int, col, value string) (*sheetapi.WriteResult, error) {
	id, err := c.currentSheet()
	if err != nil {
		return nil, err
	}
	if err := sheetid.ValidateRow(row); err != nil {
		return nil, err
	}
	letter, err := c.ResolveColumn(ctx, col)
	if err != nil {
		return nil, err
	}
	defer c.Invalidate()
	return c.svc.SetCell(ctx, id, row, letter, value)
}

// Column fetches a column's values. Values are never cached.
func (c *Controller) Column(ctx context.Context, col string) (*sheetapi.Column, error) {
	id, err := c.currentSheet()
	if err != nil {
		return nil, err
	}
	letter, err := c.ResolveColumn(ctx, col)
	if err != nil {
		return nil, err
	}
	return c.svc.Column(ctx, id, letter)
}

// PlotRequest describes one chart.
type PlotRequest struct {
	Col  string // letter or header; empty uses the selected column
	Kind render.Kind
	Mode plot.Mode // bar charts only
}

// PlotResult is a drawn chart and how it was aggregated.
type PlotResult struct {
	Col     string        `json:"col"`
	Header  string        `json:"header"`
	Kind    render.Kind   `json:"kind"`
	Mode    plot.Mode     `json:"mode"`
	Values  int           `json:"values"`
	Numeric bool          `json:"numeric"`
	Result  plot.Result   `json:"result"`
	MS      int64         `json:"ms,omitempty"`
	Chart   *render.Chart `json:"-"`
}

// Plot fetches a column, aggregates it and draws it on the canvas. Starting a
// plot cancels any plot still in flight; a superseded plot never draws.
func (c *Controller) Plot(ctx context.Context, req PlotRequest) (*PlotResult, error) {
	id, err := c.currentSheet()
	if err != nil {
		return nil, err
	}
	if req.Kind == "" {
		req.Kind = render.KindBar
	}
	col := req.Col
	if col == "" {
		col = c.SelectedColumn()
	}
	letter, err := c.ResolveColumn(ctx, col)
	if err != nil {
		return nil, err
	}

	ctx, seq := c.beginPlot(ctx)
	defer c.endPlot(seq)

	column, err := c.svc.Column(ctx, id, letter)
	if !c.isCurrentPlot(seq) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	values := column.Strings()
	mode := req.Mode
	if req.Kind == render.KindPie {
		mode = plot.ModePie
	}
	dist, err := plot.Aggregate(values, mode, c.opts)
	if err != nil {
		return nil, err
	}

	header := column.Header
	if header == "" {
		header = letter
	}
	title := fmt.Sprintf("%s (%s)", header, dist.Mode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.plotSeq {
		return nil, ErrSuperseded
	}
	ch, err := c.canvas.Draw(req.Kind, title, dist.Result)
	if err != nil {
		return nil, err
	}

	return &PlotResult{
		Col:     letter,
		Header:  header,
		Kind:    req.Kind,
		Mode:    dist.Mode,
		Values:  len(values),
		Numeric: plot.IsMostlyNumeric(values),
		Result:  dist.Result,
		MS:      column.MS,
		Chart:   ch,
	}, nil
}

func (c *Controller) beginPlot(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPlot != nil {
		c.cancelPlot()
	}
	c.plotSeq++
	c.cancelPlot = cancel
	return ctx, c.plotSeq
}

func (c *Controller) endPlot(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.plotSeq && c.cancelPlot != nil {
		c.cancelPlot()
		c.cancelPlot = nil
	}
}

func (c *Controller) isCurrentPlot(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.plotSeq
}

// Export writes the current chart to path as PNG or PDF.
func (c *Controller) Export(path string, asPDF bool) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path is required")
	}
	return render.ExportFile(path, c.canvas.Current(), asPDF)
}

// elapsed is a small helper for timing status lines.
func elapsed(start time.Time) int64 { return time.Since(start).Milliseconds() }
