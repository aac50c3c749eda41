// Package dashboard composes filters, aggregations and chart specs into the
// panels of each dashboard page.
package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/chart"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/table"
)

// Options tunes the page computations.
type Options struct {
	// TopN caps top-N bar charts.
	TopN int
	// HistogramBins is the bin count for the helpful-vote histogram.
	HistogramBins int
	// RatingBins is the bin count for the average-rating histogram.
	RatingBins int
	// MinRatings is the rating_number threshold for the rating histogram.
	MinRatings float64
	// TitleSample is how many of the most rated products feed title terms.
	TitleSample int
	// Terms caps term-frequency panels.
	Terms int
	// TopReviews is how many of the most helpful reviews are listed.
	TopReviews int
	// UserColumns are the demographic columns charted on the users page.
	UserColumns []string
	// DonutMax is the most categories a demographic column may have and
	// still be drawn as a donut.
	DonutMax int
	// Period truncates dates for over-time panels.
	Period analysis.Granularity
}

// DefaultOptions returns the settings the dashboards ship with.
func DefaultOptions() Options {
	return Options{
		TopN:          10,
		HistogramBins: 100,
		RatingBins:    20,
		MinRatings:    50,
		TitleSample:   100,
		Terms:         25,
		TopReviews:    10,
		UserColumns:   []string{dataset.ColAgeBucket, "gender", "country"},
		DonutMax:      6,
		Period:        analysis.Month,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopN <= 0 {
		o.TopN = d.TopN
	}
	if o.HistogramBins <= 0 {
		o.HistogramBins = d.HistogramBins
	}
	if o.RatingBins <= 0 {
		o.RatingBins = d.RatingBins
	}
	if o.TitleSample <= 0 {
		o.TitleSample = d.TitleSample
	}
	if o.Terms <= 0 {
		o.Terms = d.Terms
	}
	if o.TopReviews <= 0 {
		o.TopReviews = d.TopReviews
	}
	if o.UserColumns == nil {
		o.UserColumns = d.UserColumns
	}
	if o.DonutMax <= 0 {
		o.DonutMax = d.DonutMax
	}
	return o
}

// Panel is one chart or table on a page. Group holds the aggregation a
// chart was built from.
type Panel struct {
	Name  string
	Chart *chart.Spec
	Group *analysis.GroupResult
	Table *table.Table
}

// MarshalJSON writes the table as a list of row objects.
func (p Panel) MarshalJSON() ([]byte, error) {
	type view struct {
		Name  string                   `json:"name"`
		Chart *chart.Spec              `json:"chart,omitempty"`
		Group *analysis.GroupResult    `json:"group,omitempty"`
		Rows  []map[string]table.Value `json:"rows,omitempty"`
	}
	v := view{Name: p.Name, Chart: p.Chart, Group: p.Group}
	if p.Table != nil {
		v.Rows = make([]map[string]table.Value, 0, p.Table.Len())
		for i := 0; i < p.Table.Len(); i++ {
			rec, _ := p.Table.Row(i)
			v.Rows = append(v.Rows, rec.Map())
		}
	}
	return json.Marshal(v)
}

// Page is the computed content of one dashboard.
type Page struct {
	Title  string   `json:"title"`
	Panels []Panel  `json:"panels"`
	Notes  []string `json:"notes,omitempty"`
}

// Panel finds a panel by name.
func (p *Page) Panel(name string) (Panel, bool) {
	for _, pn := range p.Panels {
		if pn.Name == name {
			return pn, true
		}
	}
	return Panel{}, false
}

// Charts returns the chart specs of the page in panel order.
func (p *Page) Charts() []*chart.Spec {
	var out []*chart.Spec
	for _, pn := range p.Panels {
		if pn.Chart != nil {
			out = append(out, pn.Chart)
		}
	}
	return out
}

func (p *Page) add(pn Panel) { p.Panels = append(p.Panels, pn) }

func (p *Page) note(format string, args ...any) {
	p.Notes = append(p.Notes, fmt.Sprintf(format, args...))
}

// Markdown renders every panel as a heading followed by its data.
func (p *Page) Markdown(rowLimit int) string {
	return p.markdown(rowLimit, nil)
}

// markdown renders the page; head, when set, writes sections between the
// title and the first panel.
func (p *Page) markdown(rowLimit int, head func(*strings.Builder)) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", p.Title)
	if head != nil {
		head(&b)
	}
	for _, pn := range p.Panels {
		fmt.Fprintf(&b, "\n## %s\n\n", pn.Name)
		switch {
		case pn.Table != nil:
			b.WriteString(analysis.MarkdownTable(pn.Table, rowLimit))
		case pn.Group != nil:
			b.WriteString(pn.Group.Markdown())
		case pn.Chart != nil:
			for _, pt := range pn.Chart.Points {
				fmt.Fprintf(&b, "- %s: %g\n", pt.Label, pt.Value)
			}
		}
		if pn.Chart.Empty() && pn.Table == nil {
			b.WriteString("(no data)\n")
		}
	}
	if len(p.Notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range p.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func groupPanel(name string, g analysis.GroupResult, spec *chart.Spec) Panel {
	return Panel{Name: name, Chart: spec, Group: &g}
}
