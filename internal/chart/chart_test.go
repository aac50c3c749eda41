package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dashkit/internal/analysis"
	"github.com/KaramelBytes/dashkit/internal/table"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func counts(col string, kv ...any) analysis.GroupResult {
	g := analysis.GroupResult{KeyColumn: col, Metric: "count"}
	for i := 0; i < len(kv); i += 2 {
		label := kv[i].(string)
		g.Entries = append(g.Entries, analysis.Entry{Key: table.String(label), Label: label, Metric: float64(kv[i+1].(int))})
	}
	return g
}

func monthly() analysis.GroupResult {
	g := analysis.GroupResult{KeyColumn: "dateSoldString", Metric: "median price"}
	for i, v := range []float64{410000, 395000, 430000} {
		m := time.Date(2021, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		g.Entries = append(g.Entries, analysis.Entry{Key: table.Time(m), Label: m.Format("2006-01"), Metric: v})
	}
	return g
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Subdivisionname", Capitalize("subdivisionName"))
	assert.Equal(t, "Age_bucket", Capitalize("age_bucket"))
	assert.Equal(t, "", Capitalize(""))
}

func TestBuildersTitlesAndOrder(t *testing.T) {
	g := counts("store", "Acme", 2, "Zed", 9, "Bolt", 5)

	v := VerticalBar(g, true)
	assert.Equal(t, KindBar, v.Kind)
	assert.Equal(t, "Total Count of Store", v.Title)
	assert.Equal(t, []string{"Zed", "Bolt", "Acme"}, labels(v.Ordered()))
	assert.Equal(t, "Acme", v.Points[0].Label, "Ordered leaves Points alone")

	h := HorizontalBar(g, false)
	assert.Equal(t, "Store by Total Count", h.Title)
	assert.Equal(t, []string{"Acme", "Bolt", "Zed"}, labels(h.Ordered()))

	top := TopHorizontalBar(g, 2, true)
	assert.Equal(t, "Top 2 Store by Total Count", top.Title)
	assert.ElementsMatch(t, []string{"Zed", "Bolt"}, labels(top.Points))

	top = TopHorizontalBar(g, 10, true)
	assert.Equal(t, "Top 3 Store by Total Count", top.Title)

	d := Donut(g)
	assert.Equal(t, "Distribution of Store", d.Title)
	assert.Equal(t, AsGiven, d.Order)
}

func TestLineOverTimeCarriesTimes(t *testing.T) {
	s := LineOverTime(monthly(), "Median Sold Price Over Time", "Year-Month", "Median Sold Price")
	require.Len(t, s.Points, 3)
	require.NotNil(t, s.Points[0].Time)
	assert.Equal(t, time.January, s.Points[0].Time.Month())
	assert.Equal(t, []string{"2021-01", "2021-02", "2021-03"}, labels(s.Ordered()))
}

func TestFromHistogram(t *testing.T) {
	h := analysis.HistogramResult{Column: "helpful_vote", Bins: []analysis.Bin{{Low: 0, High: 5, Count: 7}, {Low: 5, High: 10, Count: 1}}}
	s := FromHistogram(h, "Distribution of Helpful Votes", "Helpful Votes", "Number of Reviews")
	assert.Equal(t, KindHistogram, s.Kind)
	assert.Equal(t, []float64{7, 1}, values(s.Points))
	assert.Equal(t, "[0, 5)", s.Points[0].Label)
}

func TestRenderPNG(t *testing.T) {
	specs := []*Spec{
		VerticalBar(counts("c", "a", 3, "b", 1), true),
		TopHorizontalBar(counts("c", "a", 3, "b", 1, "d", 2), 2, true),
		Donut(counts("c", "a", 3, "b", 0, "d", 2)),
		LineOverTime(monthly(), "Median", "Year-Month", "price"),
		LineOverTime(counts("rating", "1", 4), "One point", "", ""),
		Simple(counts("c", "flat", 2, "also", 2)),
	}
	for _, s := range specs {
		var buf bytes.Buffer
		require.NoError(t, RenderPNG(s, &buf, 400, 300), s.Title)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), s.Title)
	}
}

func TestRenderPNGEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPNG(VerticalBar(analysis.GroupResult{KeyColumn: "c"}, false), &buf, 0, 0)
	assert.True(t, errors.Is(err, ErrEmpty))
	assert.Zero(t, buf.Len())

	err = RenderPNG(Donut(counts("c", "a", 0)), &buf, 0, 0)
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestRenderTerminal(t *testing.T) {
	assert.Equal(t, "", RenderTerminal(nil, 80))
	assert.Equal(t, "", RenderTerminal(Donut(analysis.GroupResult{}), 80))

	out := RenderTerminal(HorizontalBar(counts("zipcode", "98101", 2, "98103", 8), true), 60)
	assert.Contains(t, out, "Zipcode by Total Count")
	assert.Less(t, strings.Index(out, "98103"), strings.Index(out, "98101"), "largest bar first")
	assert.Contains(t, out, "█")

	out = RenderTerminal(Donut(counts("hasView", "true", 1, "false", 3)), 60)
	assert.Contains(t, out, "75.0%")

	out = RenderTerminal(LineOverTime(monthly(), "Median Sold Price Over Time", "", "price"), 60)
	assert.Contains(t, out, "price: 395000 to 430000")
	assert.Contains(t, out, "2021-01")
	assert.Contains(t, out, "2021-03")
}

func labels(pts []Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = p.Label
	}
	return out
}

func values(pts []Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Value
	}
	return out
}
