// Package chart maps aggregation results to small declarative chart specs
// and renders them as PNG images or terminal plots.
package chart

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/dashkit/internal/analysis"
)

// Kind selects how a Spec is drawn.
type Kind string

const (
	KindBar       Kind = "bar"
	KindHBar      Kind = "hbar"
	KindLine      Kind = "line"
	KindDonut     Kind = "donut"
	KindHistogram Kind = "histogram"
)

// Order is the category axis ordering a renderer should keep.
type Order string

const (
	// AsGiven draws points in slice order.
	AsGiven Order = "given"
	// TotalDescending puts the largest value first.
	TotalDescending Order = "total descending"
	// TotalAscending puts the smallest value first. Horizontal bars use it so
	// the largest bar ends up on top.
	TotalAscending Order = "total ascending"
)

// Point is one labelled value. Time is set for line charts over periods.
type Point struct {
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Time  *time.Time `json:"time,omitempty"`
}

// Spec is everything a renderer needs to draw one chart.
type Spec struct {
	Kind       Kind    `json:"kind"`
	Title      string  `json:"title"`
	XLabel     string  `json:"x_label,omitempty"`
	YLabel     string  `json:"y_label,omitempty"`
	Order      Order   `json:"order"`
	ShowValues bool    `json:"show_values"`
	Points     []Point `json:"points"`
}

// Empty reports whether there is nothing to draw.
func (s *Spec) Empty() bool { return s == nil || len(s.Points) == 0 }

// Ordered returns the points in the order s.Order asks for. The receiver is
// not modified.
func (s *Spec) Ordered() []Point {
	out := make([]Point, len(s.Points))
	copy(out, s.Points)
	switch s.Order {
	case TotalDescending:
		stableSort(out, func(a, b Point) bool { return a.Value > b.Value })
	case TotalAscending:
		stableSort(out, func(a, b Point) bool { return a.Value < b.Value })
	}
	return out
}

// Capitalize upper-cases the first letter and lower-cases the rest, so
// "subdivisionName" becomes "Subdivisionname" in titles.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

func points(g analysis.GroupResult) []Point {
	out := make([]Point, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = Point{Label: e.Label, Value: e.Metric}
	}
	return out
}

// VerticalBar charts a count grouping with categories along the x axis,
// largest first.
func VerticalBar(g analysis.GroupResult, showValues bool) *Spec {
	return &Spec{
		Kind:       KindBar,
		Title:      fmt.Sprintf("Total Count of %s", Capitalize(g.KeyColumn)),
		XLabel:     g.KeyColumn,
		YLabel:     "count",
		Order:      TotalDescending,
		ShowValues: showValues,
		Points:     points(g),
	}
}

// HorizontalBar charts a count grouping with categories along the y axis.
func HorizontalBar(g analysis.GroupResult, showValues bool) *Spec {
	return &Spec{
		Kind:       KindHBar,
		Title:      fmt.Sprintf("%s by Total Count", Capitalize(g.KeyColumn)),
		XLabel:     "Total Count",
		YLabel:     Capitalize(g.KeyColumn),
		Order:      TotalAscending,
		ShowValues: showValues,
		Points:     points(g),
	}
}

// TopHorizontalBar keeps the n largest entries of g. The title carries the
// number of bars actually drawn.
func TopHorizontalBar(g analysis.GroupResult, n int, showValues bool) *Spec {
	top := analysis.TopN(g, n)
	s := HorizontalBar(top, showValues)
	s.Title = fmt.Sprintf("Top %d %s by Total Count", top.Len(), Capitalize(g.KeyColumn))
	return s
}

// Donut charts the share of each category.
func Donut(g analysis.GroupResult) *Spec {
	return &Spec{
		Kind:   KindDonut,
		Title:  fmt.Sprintf("Distribution of %s", Capitalize(g.KeyColumn)),
		Order:  AsGiven,
		Points: points(g),
	}
}

// LineOverTime charts a chronological grouping. Entries keyed by a time get
// their Time set.
func LineOverTime(g analysis.GroupResult, title, xLabel, yLabel string) *Spec {
	pts := points(g)
	for i, e := range g.Entries {
		if w := e.Key.When(); !e.Key.IsNull() && !w.IsZero() {
			pts[i].Time = &w
		}
	}
	return &Spec{
		Kind:   KindLine,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Order:  AsGiven,
		Points: pts,
	}
}

// FromHistogram charts histogram bins in range order.
func FromHistogram(h analysis.HistogramResult, title, xLabel, yLabel string) *Spec {
	pts := make([]Point, len(h.Bins))
	for i, b := range h.Bins {
		pts[i] = Point{Label: b.Label(), Value: float64(b.Count)}
	}
	return &Spec{
		Kind:   KindHistogram,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Order:  AsGiven,
		Points: pts,
	}
}

// Simple is a plain bar chart of g in its own order, with no labels beyond
// the key column.
func Simple(g analysis.GroupResult) *Spec {
	return &Spec{
		Kind:   KindBar,
		Title:  g.KeyColumn,
		XLabel: g.KeyColumn,
		YLabel: g.Metric,
		Order:  AsGiven,
		Points: points(g),
	}
}

func stableSort(p []Point, less func(a, b Point) bool) {
	sort.SliceStable(p, func(i, j int) bool { return less(p[i], p[j]) })
}
