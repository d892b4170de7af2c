// Package render draws aggregation results as bar or pie charts and exports them.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klytics/sheetkit/internal/plot"
)

// Kind is the chart type drawn on a canvas.
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ParseKind validates a user-supplied chart type. Empty means bar.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindBar, nil
	case KindBar, KindPie:
		return k, nil
	}
	return "", fmt.Errorf("unknown chart type %q (expected bar or pie)", s)
}

var (
	// ErrNoChart is returned when exporting before anything was drawn.
	ErrNoChart = errors.New("no chart to export — plot a column first")
	// ErrEmpty is returned when a result has nothing to draw.
	ErrEmpty = errors.New("nothing to plot — the column has no usable values")
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 576
)

// Chart is a rendered chart.
type Chart struct {
	Kind   Kind
	Title  string
	Result plot.Result
	Width  int
	Height int

	png []byte
}

// PNG returns the encoded image.
func (c *Chart) PNG() []byte { return c.png }

// Canvas holds at most one chart. Drawing replaces whatever was there.
type Canvas struct {
	Width  int
	Height int

	mu      sync.Mutex
	current *Chart
}

// NewCanvas creates a canvas; non-positive sizes fall back to the defaults.
func NewCanvas(width, height int) *Canvas {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Canvas{Width: width, Height: height}
}

// Draw destroys the current chart and renders a new one from res.
// On failure the canvas is left empty.
func (c *Canvas) Draw(kind Kind, title string, res plot.Result) (*Chart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = nil

	var (
		data []byte
		err  error
	)
	switch kind {
	case KindBar:
		data, err = renderBar(title, res, c.Width, c.Height)
	case KindPie:
		data, err = renderPie(title, res, c.Width, c.Height)
	default:
		return nil, fmt.Errorf("unknown chart type %q", kind)
	}
	if err != nil {
		return nil, err
	}

	c.current = &Chart{
		Kind:   kind,
		Title:  title,
		Result: res,
		Width:  c.Width,
		Height: c.Height,
		png:    data,
	}
	return c.current, nil
}

// Current returns the chart on the canvas, or nil.
func (c *Canvas) Current() *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Clear removes the current chart.
func (c *Canvas) Clear() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
