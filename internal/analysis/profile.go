package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// ProfileOptions controls Describe.
type ProfileOptions struct {
	// SampleRows determines how many example rows to include in the report.
	// Zero disables samples.
	SampleRows int
	// GroupBy adds a row count per distinct value of this column.
	GroupBy string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultProfileOptions returns reasonable defaults for dataset profiling.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{SampleRows: 5, Outliers: true, OutlierThreshold: 3.5}
}

// Report is a markdown-friendly profile of a loaded table.
type Report struct {
	Name     string          `json:"name"`
	Rows     int             `json:"rows"`
	Cols     []ColumnSummary `json:"columns"`
	Samples  [][]string      `json:"samples,omitempty"`
	Groups   *GroupResult    `json:"groups,omitempty"`
	Corr     []PairCorr      `json:"correlations,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|datetime|categorical|text|empty
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`
	// Numeric stats
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Median float64 `json:"median,omitempty"`
	Std    float64 `json:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Datetime range
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	// Categorical top values
	TopValues    []Entry  `json:"top_values,omitempty"`
	ExampleTexts []string `json:"examples,omitempty"`
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// maxCategoryLen separates short category-like strings from free text.
const maxCategoryLen = 64

// Describe profiles every column of t.
func Describe(name string, t *table.Table, opt ProfileOptions) (*Report, error) {
	rep := &Report{Name: name, Rows: t.Len()}
	for i := 0; i < t.Len() && i < opt.SampleRows; i++ {
		rec, _ := t.Row(i)
		vals := rec.Values()
		row := make([]string, len(vals))
		for j, v := range vals {
			row[j] = v.Text()
		}
		rep.Samples = append(rep.Samples, row)
	}

	numCols := map[string][]table.Value{}
	var numOrder []string
	for _, c := range t.Columns() {
		vals, err := t.Column(c.Name)
		if err != nil {
			return nil, err
		}
		s := summarize(c, vals, opt)
		if s.Kind == "numeric" {
			numCols[c.Name] = vals
			numOrder = append(numOrder, c.Name)
		}
		rep.Cols = append(rep.Cols, s)
	}

	if opt.GroupBy != "" {
		g, err := CountByGroup(t, opt.GroupBy)
		if err != nil {
			return nil, err
		}
		if len(g.Entries) > 20 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("showing 20 of %d groups for %s", len(g.Entries), opt.GroupBy))
			g = TopN(g, 20)
		}
		rep.Groups = &g
	}

	if opt.Correlations && len(numOrder) >= 2 {
		for a := 0; a < len(numOrder); a++ {
			for b := a + 1; b < len(numOrder); b++ {
				r, ok := pearson(numCols[numOrder[a]], numCols[numOrder[b]])
				if ok {
					rep.Corr = append(rep.Corr, PairCorr{A: numOrder[a], B: numOrder[b], R: r})
				}
			}
		}
		sort.SliceStable(rep.Corr, func(i, j int) bool {
			return math.Abs(rep.Corr[i].R) > math.Abs(rep.Corr[j].R)
		})
	}
	if t.Len() == 0 {
		rep.Warnings = append(rep.Warnings, "table has no rows")
	}
	return rep, nil
}

func summarize(c table.Column, vals []table.Value, opt ProfileOptions) ColumnSummary {
	s := ColumnSummary{Name: c.Name}
	var nums []float64
	var first, last table.Value
	cats := map[string]int{}
	var catOrder []string
	long := 0
	var n int
	var mean, m2 float64
	for _, v := range vals {
		if v.IsNull() {
			s.Missing++
			continue
		}
		s.NonNull++
		switch v.Kind() {
		case table.KindNumber:
			x := v.Num()
			if n == 0 || x < s.Min {
				s.Min = x
			}
			if n == 0 || x > s.Max {
				s.Max = x
			}
			// Welford update
			n++
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
			nums = append(nums, x)
		case table.KindTime:
			if c1, _ := v.Compare(first); first.IsNull() || c1 < 0 {
				first = v
			}
			if c2, _ := v.Compare(last); last.IsNull() || c2 > 0 {
				last = v
			}
		default:
			txt := v.Text()
			if len(txt) > maxCategoryLen {
				long++
				if len(s.ExampleTexts) < 3 {
					s.ExampleTexts = append(s.ExampleTexts, txt)
				}
				continue
			}
			if _, ok := cats[txt]; !ok {
				catOrder = append(catOrder, txt)
			}
			cats[txt]++
		}
	}

	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case n > 0 && n >= len(cats)+long:
		s.Kind = "numeric"
		s.Mean = mean
		if n > 1 {
			s.Std = math.Sqrt(m2 / float64(n-1))
		}
		var mad float64
		s.Median, mad = medianMAD(nums)
		if opt.Outliers && len(nums) >= 8 {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutlierThreshold = thr
			if mad > 0 {
				for _, x := range nums {
					az := math.Abs(0.6745 * (x - s.Median) / mad)
					if az > thr {
						s.OutliersCount++
					}
					if az > s.OutliersMaxAbsZ {
						s.OutliersMaxAbsZ = az
					}
				}
			}
		}
	case !first.IsNull():
		s.Kind = "datetime"
		s.First = first.Text()
		s.Last = last.Text()
	case len(cats) > 0 && len(cats) >= long:
		s.Kind = "categorical"
		s.Unique = len(cats)
		tops := make([]Entry, 0, len(catOrder))
		for _, k := range catOrder {
			tops = append(tops, Entry{Key: table.String(k), Label: k, Metric: float64(cats[k])})
		}
		sortByMetricDesc(tops)
		if len(tops) > 8 {
			tops = tops[:8]
		}
		s.TopValues = tops
	default:
		s.Kind = "text"
	}
	return s
}

// pearson computes r over rows where both values are numeric.
func pearson(xs, ys []table.Value) (float64, bool) {
	var n, sumX, sumY, sumXX, sumYY, sumXY float64
	for i := range xs {
		if xs[i].Kind() != table.KindNumber || ys[i].Kind() != table.KindNumber {
			continue
		}
		x, y := xs[i].Num(), ys[i].Num()
		n++
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	if n < 2 {
		return 0, false
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 {
		return 0, false
	}
	r := (n*sumXY - sumX*sumY) / denom
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "datetime":
			b.WriteString(fmt.Sprintf("; %s to %s", c.First, c.Last))
		case "categorical":
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Label), int(kv.Metric)))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(truncate(ex, 80)))
				}
			}
		}
		b.WriteString("\n")
	}
	if r.Groups != nil && len(r.Groups.Entries) > 0 {
		b.WriteString("\n[GROUP-BY SUMMARY]\n")
		for _, e := range r.Groups.Entries {
			b.WriteString(fmt.Sprintf("- %s=%s (n=%d)\n", r.Groups.KeyColumn, safeVal(e.Label), int(e.Metric)))
		}
	}
	if len(r.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for i, p := range r.Corr {
			if i == 10 {
				break
			}
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		header := make([]string, len(r.Cols))
		for i, c := range r.Cols {
			header[i] = c.Name
		}
		writeMarkdownTable(&b, header, r.Samples)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}
