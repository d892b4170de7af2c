package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/klytics/sheetkit/internal/plot"
)

var palette = []drawing.Color{
	{R: 54, G: 162, B: 235, A: 255},
	{R: 255, G: 99, B: 132, A: 255},
	{R: 255, G: 205, B: 86, A: 255},
	{R: 75, G: 192, B: 192, A: 255},
	{R: 153, G: 102, B: 255, A: 255},
	{R: 255, G: 159, B: 64, A: 255},
	{R: 201, G: 203, B: 207, A: 255},
	{R: 46, G: 139, B: 87, A: 255},
	{R: 220, G: 20, B: 60, A: 255},
	{R: 106, G: 90, B: 205, A: 255},
}

func colorAt(i int) drawing.Color { return palette[i%len(palette)] }

const legendRowHeight = 18

func renderBar(title string, res plot.Result, width, height int) ([]byte, error) {
	if res.Len() == 0 {
		return nil, ErrEmpty
	}

	maxCount := 0
	for _, c := range res.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	top, ticks := integerTicks(maxCount)

	slot := float64(width-120) / float64(res.Len())
	barWidth := int(math.Max(2, slot*0.7))
	spacing := int(math.Max(1, slot*0.3))

	bars := make([]chart.Value, res.Len())
	for i := range bars {
		bars[i] = chart.Value{
			Label: res.Labels[i],
			Value: float64(res.Counts[i]),
			Style: chart.Style{
				FillColor:   palette[0],
				StrokeColor: palette[0],
			},
		}
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
			Ticks: ticks,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("could not render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// integerTicks returns a zero-based axis top and whole-number ticks up to it.
func integerTicks(maxCount int) (int, []chart.Tick) {
	if maxCount < 1 {
		maxCount = 1
	}
	step := int(math.Ceil(float64(maxCount) / 10))
	top := step * int(math.Ceil(float64(maxCount)/float64(step)))

	ticks := make([]chart.Tick, 0, top/step+1)
	for v := 0; v <= top; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return top, ticks
}

func renderPie(title string, res plot.Result, width, height int) ([]byte, error) {
	if res.Total() == 0 {
		return nil, ErrEmpty
	}

	var values []chart.Value
	var legend []legendEntry
	for i, label := range res.Labels {
		if res.Counts[i] <= 0 {
			continue
		}
		c := colorAt(i)
		values = append(values, chart.Value{
			Label: label,
			Value: float64(res.Counts[i]),
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		})
		legend = append(legend, legendEntry{label: fmt.Sprintf("%s (%d)", label, res.Counts[i]), color: c})
	}

	rows := legendRows(legend, width)
	pc := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20 + rows*legendRowHeight},
		},
		Values:   values,
		Elements: []chart.Renderable{bottomLegend(legend, width, height)},
	}

	var buf bytes.Buffer
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("could not render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

type legendEntry struct {
	label string
	color drawing.Color
}

const (
	legendSwatch   = 10
	legendGap      = 6
	legendItemPad  = 16
	legendCharWide = 7
)

func legendItemWidth(e legendEntry) int {
	return legendSwatch + legendGap + len(e.label)*legendCharWide + legendItemPad
}

// legendRows estimates how many rows the legend wraps onto.
func legendRows(entries []legendEntry, width int) int {
	rows, x := 1, 0
	usable := width - 40
	for _, e := range entries {
		w := legendItemWidth(e)
		if x > 0 && x+w > usable {
			rows++
			x = 0
		}
		x += w
	}
	return rows
}

// bottomLegend draws one swatch and label per slice along the bottom edge.
func bottomLegend(entries []legendEntry, width, height int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		textStyle := chart.Style{
			FontSize:  9,
			FontColor: drawing.ColorBlack,
		}.InheritFrom(defaults)
		textStyle.WriteTextOptionsToRenderer(r)

		rows := legendRows(entries, width)
		left, usable := 20, width-40
		x := left
		y := height - 10 - rows*legendRowHeight + legendRowHeight/2

		for _, e := range entries {
			w := legendItemWidth(e)
			if x > left && x-left+w > usable {
				x = left
				y += legendRowHeight
			}

			r.SetFillColor(e.color)
			r.SetStrokeColor(e.color)
			r.SetStrokeWidth(1)
			r.MoveTo(x, y-legendSwatch/2)
			r.LineTo(x+legendSwatch, y-legendSwatch/2)
			r.LineTo(x+legendSwatch, y+legendSwatch/2)
			r.LineTo(x, y+legendSwatch/2)
			r.Close()
			r.FillStroke()

			textStyle.WriteTextOptionsToRenderer(r)
			r.Text(e.label, x+legendSwatch+legendGap, y+legendSwatch/2)
			x += w
		}
	}
}
