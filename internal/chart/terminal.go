package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/KaramelBytes/dashkit/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

const (
	maxLabelWidth = 24
	plotHeight    = 12
)

// RenderTerminal draws spec for a terminal of the given width. Line charts
// become braille plots; every other kind becomes a column of bars. Empty
// specs render as the empty string.
func RenderTerminal(spec *Spec, width int) string {
	if spec.Empty() {
		return ""
	}
	if width < 20 {
		width = 80
	}
	var b strings.Builder
	if spec.Title != "" {
		b.WriteString(titleStyle.Render(spec.Title))
		b.WriteString("\n")
	}
	if spec.Kind == KindLine {
		b.WriteString(linePlot(spec, width))
	} else {
		b.WriteString(bars(spec, width))
	}
	return b.String()
}

func bars(spec *Spec, width int) string {
	pts := spec.Ordered()
	if spec.Kind == KindHBar {
		// terminals read top-down, so the largest bar goes first
		stableSort(pts, func(a, b Point) bool { return a.Value > b.Value })
	}
	labelW := 0
	for _, p := range pts {
		labelW = max(labelW, lipgloss.Width(utils.Truncate(p.Label, maxLabelWidth)))
	}
	var maxV, total float64
	for _, p := range pts {
		maxV = max(maxV, p.Value)
		total += p.Value
	}
	room := width - labelW - 14
	if room < 4 {
		room = 4
	}
	var b strings.Builder
	for _, p := range pts {
		n := 0
		if maxV > 0 && p.Value > 0 {
			n = max(1, int(p.Value/maxV*float64(room)))
		}
		val := formatValue(p.Value)
		if spec.Kind == KindDonut && total > 0 {
			val = fmt.Sprintf("%s (%.1f%%)", val, p.Value*100/total)
		}
		label := utils.Truncate(p.Label, maxLabelWidth)
		b.WriteString(labelStyle.Render(label + strings.Repeat(" ", labelW-lipgloss.Width(label))))
		b.WriteString(" ")
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(val))
		b.WriteString("\n")
	}
	return b.String()
}

func linePlot(spec *Spec, width int) string {
	pts := spec.Ordered()
	ys := make([]float64, len(pts))
	lo, hi := pts[0].Value, pts[0].Value
	for i, p := range pts {
		ys[i] = p.Value
		lo = min(lo, p.Value)
		hi = max(hi, p.Value)
	}
	if len(ys) == 1 {
		ys = append(ys, ys[0])
	}
	c := plot.NewCanvas(width, plotHeight)
	c.NumDataPoints = len(ys)
	c.ShowAxis = false
	c.LineColors = []plot.Color{plot.Red}
	c.Fill([][]float64{ys})

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s: %s to %s", yName(spec), formatValue(lo), formatValue(hi))))
	b.WriteString("\n")
	drawn := c.String()
	b.WriteString(drawn)
	if !strings.HasSuffix(drawn, "\n") {
		b.WriteString("\n")
	}
	first, last := pts[0].Label, pts[len(pts)-1].Label
	gap := width - lipgloss.Width(first) - lipgloss.Width(last)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(labelStyle.Render(first + strings.Repeat(" ", gap) + last))
	b.WriteString("\n")
	return b.String()
}

func yName(spec *Spec) string {
	if spec.YLabel != "" {
		return spec.YLabel
	}
	return "value"
}
