package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmpty is returned when a spec has no points to draw.
var ErrEmpty = errors.New("chart has no data")

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
	// labelledBars is the most bars that still get every label drawn.
	labelledBars = 24
)

var palette = []drawing.Color{
	gochart.ColorBlue,
	gochart.ColorGreen,
	gochart.ColorRed,
	gochart.ColorOrange,
	gochart.ColorCyan,
	gochart.ColorYellow,
	gochart.ColorAlternateGray,
}

// RenderPNG draws spec as a PNG into w. Width and height fall back to
// DefaultWidth and DefaultHeight when not positive. Horizontal bars are drawn
// upright with the largest bar first.
func RenderPNG(spec *Spec, w io.Writer, width, height int) error {
	if spec.Empty() {
		return ErrEmpty
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	var err error
	switch spec.Kind {
	case KindLine:
		err = renderLine(spec, w, width, height)
	case KindDonut:
		err = renderDonut(spec, w, width, height)
	default:
		err = renderBars(spec, w, width, height)
	}
	if err != nil {
		return fmt.Errorf("render %s chart %q: %w", spec.Kind, spec.Title, err)
	}
	return nil
}

func renderBars(spec *Spec, w io.Writer, width, height int) error {
	pts := spec.Ordered()
	if spec.Kind == KindHBar {
		// largest first reads the same as largest on top
		stableSort(pts, func(a, b Point) bool { return a.Value > b.Value })
	}
	every := 1
	if len(pts) > labelledBars {
		every = int(math.Ceil(float64(len(pts)) / labelledBars))
	}
	bars := make([]gochart.Value, len(pts))
	for i, p := range pts {
		label := p.Label
		if i%every != 0 {
			label = ""
		}
		if spec.ShowValues && every == 1 {
			label = fmt.Sprintf("%s (%s)", label, formatValue(p.Value))
		}
		bars[i] = gochart.Value{Value: p.Value, Label: label}
	}
	lo, hi := valueRange(pts, true)
	slot := float64(width-120) / float64(len(pts))
	barWidth := int(math.Max(1, slot*0.75))
	bc := gochart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: int(math.Max(0, slot-float64(barWidth))),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Name:  spec.YLabel,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}

func renderDonut(spec *Spec, w io.Writer, width, height int) error {
	var vals []gochart.Value
	for i, p := range spec.Ordered() {
		if p.Value <= 0 {
			continue
		}
		vals = append(vals, gochart.Value{
			Value: p.Value,
			Label: p.Label,
			Style: gochart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(vals) == 0 {
		return ErrEmpty
	}
	dc := gochart.DonutChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: vals,
	}
	return dc.Render(gochart.PNG, w)
}

func renderLine(spec *Spec, w io.Writer, width, height int) error {
	pts := spec.Ordered()
	style := gochart.Style{StrokeColor: gochart.ColorBlue, StrokeWidth: 2, DotColor: gochart.ColorBlue, DotWidth: 3}
	lo, hi := valueRange(pts, false)
	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Name:  spec.YLabel,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
	}
	if times, ok := pointTimes(pts); ok && len(pts) > 1 {
		ys := make([]float64, len(pts))
		for i, p := range pts {
			ys[i] = p.Value
		}
		ch.XAxis = gochart.XAxis{Name: spec.XLabel, ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01")}
		ch.Series = []gochart.Series{gochart.TimeSeries{Name: spec.YLabel, XValues: times, YValues: ys, Style: style}}
	} else {
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		ticks := make([]gochart.Tick, len(pts))
		for i, p := range pts {
			xs[i], ys[i] = float64(i), p.Value
			ticks[i] = gochart.Tick{Value: float64(i), Label: p.Label}
		}
		ch.XAxis = gochart.XAxis{
			Name:  spec.XLabel,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(pts)) - 0.5},
		}
		// tick bounds override Range, and one tick would collapse it
		if len(ticks) > 1 {
			ch.XAxis.Ticks = ticks
		}
		ch.Series = []gochart.Series{gochart.ContinuousSeries{Name: spec.YLabel, XValues: xs, YValues: ys, Style: style}}
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

func pointTimes(pts []Point) ([]time.Time, bool) {
	out := make([]time.Time, len(pts))
	for i, p := range pts {
		if p.Time == nil {
			return nil, false
		}
		out[i] = *p.Time
	}
	return out, true
}

// valueRange pads the y range so flat series still have a drawable axis.
// Bars always start at zero.
func valueRange(pts []Point, fromZero bool) (lo, hi float64) {
	lo, hi = pts[0].Value, pts[0].Value
	for _, p := range pts[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if fromZero && lo > 0 {
		lo = 0
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(1, math.Abs(hi)*0.1)
	}
	if !fromZero || lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}

func formatValue(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}
