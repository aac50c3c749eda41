package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/chart"
	"github.com/KaramelBytes/dashkit/internal/dataset"
	"github.com/KaramelBytes/dashkit/internal/table"
)

// Panel names of the listings page.
const (
	PanelSoldMap         = "Sold Properties"
	PanelMedianPrice     = "Median Sold Price Over Time"
	PanelSubdivisionBars = "Listings by Subdivision"
)

// ListingFilter narrows the listings page. A zero From or To falls back to
// the earliest or latest sold date in the data.
type ListingFilter struct {
	Neighborhood string
	From, To     time.Time
}

// ListingsPage is the housing dashboard: a neighborhood and sold-date
// filter, the filtered map points and the price panels.
type ListingsPage struct {
	Page
	// Neighborhoods is "All" followed by the sorted subdivision names.
	Neighborhoods []string
	// SoldFrom and SoldTo bound the sold dates of the unfiltered data.
	SoldFrom, SoldTo time.Time
	// Filter is the filter actually applied, with defaults resolved.
	Filter ListingFilter
	// Points are the filtered listings with coordinates, in map order.
	Points *table.Table
	// CenterLat and CenterLon are the median coordinates of Points.
	CenterLat, CenterLon float64
	HasCenter            bool
}

// Listings computes the listings page.
func Listings(t *table.Table, f ListingFilter, opt Options) (*ListingsPage, error) {
	opt = opt.withDefaults()
	if f.Neighborhood == "" {
		f.Neighborhood = table.AllValues
	}
	p := &ListingsPage{Page: Page{Title: "Seattle Housing Market: Sold House Analysis"}}

	names, err := analysis.Distinct(t, dataset.ColSubdivision)
	if err != nil {
		return nil, err
	}
	p.Neighborhoods = append([]string{table.AllValues}, names...)

	lo, hi, ok, err := analysis.TimeBounds(t, dataset.ColDateSold)
	if err != nil {
		return nil, err
	}
	if ok {
		p.SoldFrom, p.SoldTo = lo, hi
	} else {
		p.note("no sold dates in %d listings", t.Len())
	}
	if f.From.IsZero() {
		f.From = lo
	}
	if f.To.IsZero() {
		f.To = hi
	}
	if f.From.After(f.To) {
		return nil, fmt.Errorf("sold date range starts %s after it ends %s", f.From.Format(time.DateOnly), f.To.Format(time.DateOnly))
	}
	p.Filter = f

	filtered, err := table.FilterEqual(t, dataset.ColSubdivision, f.Neighborhood)
	if err != nil {
		return nil, err
	}
	filtered, err = table.FilterRange(filtered, dataset.ColDateSold, f.From, f.To)
	if err != nil {
		return nil, err
	}

	p.Points, err = table.DropNulls(filtered, dataset.ColLatitude, dataset.ColLongitude)
	if err != nil {
		return nil, err
	}
	lat, okLat, err := analysis.Median(p.Points, dataset.ColLatitude)
	if err != nil {
		return nil, err
	}
	lon, okLon, err := analysis.Median(p.Points, dataset.ColLongitude)
	if err != nil {
		return nil, err
	}
	if okLat && okLon {
		p.CenterLat, p.CenterLon, p.HasCenter = lat, lon, true
	}
	p.add(Panel{Name: PanelSoldMap, Table: p.Points})

	median, err := analysis.MedianByPeriod(filtered, dataset.ColDateSold, dataset.ColPrice, opt.Period)
	if err != nil {
		return nil, err
	}
	p.add(groupPanel(PanelMedianPrice, median,
		chart.LineOverTime(median, PanelMedianPrice, "Year-Month", "Median Sold Price")))

	bySub, err := analysis.CountByGroup(filtered, dataset.ColSubdivision)
	if err != nil {
		return nil, err
	}
	top := analysis.TopN(bySub, opt.TopN)
	p.add(groupPanel(PanelSubdivisionBars, top, chart.TopHorizontalBar(top, opt.TopN, true)))
	return p, nil
}

// Markdown renders the filter state and map center ahead of the panels.
func (p *ListingsPage) Markdown(rowLimit int) string {
	return p.markdown(rowLimit, func(b *strings.Builder) {
		b.WriteString("\n## Filters\n\n")
		fmt.Fprintf(b, "- Neighborhoods: %s\n", strings.Join(p.Neighborhoods, ", "))
		fmt.Fprintf(b, "- Sold date bounds: %s\n", dateRange(p.SoldFrom, p.SoldTo))
		fmt.Fprintf(b, "- Neighborhood: %s\n", p.Filter.Neighborhood)
		fmt.Fprintf(b, "- Sold between: %s\n", dateRange(p.Filter.From, p.Filter.To))
		if p.HasCenter {
			fmt.Fprintf(b, "- Map center: %.4f, %.4f\n", p.CenterLat, p.CenterLon)
		} else {
			b.WriteString("- Map center: (no coordinates)\n")
		}
	})
}

func dateRange(from, to time.Time) string {
	if from.IsZero() && to.IsZero() {
		return "(none)"
	}
	return from.Format(time.DateOnly) + " to " + to.Format(time.DateOnly)
}

// MarshalJSON adds the selector state and map center to the page.
func (p *ListingsPage) MarshalJSON() ([]byte, error) {
	type center struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	type filters struct {
		Neighborhoods []string   `json:"neighborhoods"`
		SoldFrom      *time.Time `json:"sold_from,omitempty"`
		SoldTo        *time.Time `json:"sold_to,omitempty"`
		Neighborhood  string     `json:"neighborhood"`
		From          *time.Time `json:"from,omitempty"`
		To            *time.Time `json:"to,omitempty"`
	}
	type view struct {
		Title   string   `json:"title"`
		Filters filters  `json:"filters"`
		Center  *center  `json:"center,omitempty"`
		Panels  []Panel  `json:"panels"`
		Notes   []string `json:"notes,omitempty"`
	}
	v := view{Title: p.Title, Panels: p.Panels, Notes: p.Notes}
	v.Filters = filters{
		Neighborhoods: p.Neighborhoods,
		SoldFrom:      timePtr(p.SoldFrom),
		SoldTo:        timePtr(p.SoldTo),
		Neighborhood:  p.Filter.Neighborhood,
		From:          timePtr(p.Filter.From),
		To:            timePtr(p.Filter.To),
	}
	if p.HasCenter {
		v.Center = &center{Lat: p.CenterLat, Lon: p.CenterLon}
	}
	return json.Marshal(v)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Detail is one labelled field of a selected property.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PropertyDetails lists the fields shown for a selected listing. Columns
// absent from the record show as empty.
func PropertyDetails(rec table.Record) []Detail {
	field := func(col string) string {
		v, err := rec.Get(col)
		if err != nil || v.IsNull() {
			return ""
		}
		return v.Text()
	}
	price := field(dataset.ColPrice)
	if price != "" {
		price = "$" + price
	}
	return []Detail{
		{Label: "Subdivision", Value: field(dataset.ColSubdivision)},
		{Label: "Address", Value: field(dataset.ColAddress)},
		{Label: "Posted Date", Value: field(dataset.ColDatePosted)},
		{Label: "Sold Date", Value: field(dataset.ColDateSold)},
		{Label: "Sold Price", Value: price},
		{Label: "Description", Value: field(dataset.ColDescription)},
	}
}
