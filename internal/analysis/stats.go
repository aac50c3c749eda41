package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// Bin is one equal-width histogram bucket. Bins are right-open except the
// last one, which also holds High.
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Label renders the bin range compactly.
func (b Bin) Label() string {
	return fmt.Sprintf("[%.4g, %.4g)", b.Low, b.High)
}

// HistogramResult holds the bins computed over one numeric column.
type HistogramResult struct {
	Column string `json:"column"`
	Bins   []Bin  `json:"bins"`
}

// Total is the number of values that landed in a bin.
func (h HistogramResult) Total() int {
	var n int
	for _, b := range h.Bins {
		n += b.Count
	}
	return n
}

// Histogram splits the non-null numeric values of col into bins equal-width
// buckets spanning [min, max]. A column holding a single distinct value gets
// one bin. Empty input gives an empty result.
func Histogram(t *table.Table, col string, bins int) (HistogramResult, error) {
	vals, err := numbers(t, col)
	if err != nil {
		return HistogramResult{}, err
	}
	res := HistogramResult{Column: col}
	if len(vals) == 0 {
		return res, nil
	}
	if bins < 1 {
		bins = 1
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		res.Bins = []Bin{{Low: lo, High: hi, Count: len(vals)}}
		return res, nil
	}
	width := (hi - lo) / float64(bins)
	res.Bins = make([]Bin, bins)
	for i := range res.Bins {
		res.Bins[i].Low = lo + float64(i)*width
		res.Bins[i].High = lo + float64(i+1)*width
	}
	res.Bins[bins-1].High = hi
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		res.Bins[i].Count++
	}
	return res, nil
}

// NLargest returns the n rows with the largest numeric value in col, largest
// first. Rows with a null value are skipped and ties keep table order.
func NLargest(t *table.Table, col string, n int) (*table.Table, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	type pick struct {
		row int
		v   float64
	}
	picks := make([]pick, 0, len(vals))
	for i, v := range vals {
		v = table.CoerceNumber(v)
		if v.IsNull() {
			continue
		}
		picks = append(picks, pick{row: i, v: v.Num()})
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].v > picks[j].v })
	if n < 0 {
		n = 0
	}
	if n < len(picks) {
		picks = picks[:n]
	}
	rows := make([]int, len(picks))
	for i, p := range picks {
		rows[i] = p.row
	}
	return table.Reorder(t, rows), nil
}

// Median returns the median of the non-null numeric values in col. ok is
// false when there are none.
func Median(t *table.Table, col string) (m float64, ok bool, err error) {
	vals, err := numbers(t, col)
	if err != nil || len(vals) == 0 {
		return 0, false, err
	}
	m, _ = medianMAD(vals)
	return m, true, nil
}

// Distinct lists the distinct non-null values of col as sorted text.
func Distinct(t *table.Table, col string) ([]string, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		s := v.Text()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// TimeBounds returns the earliest and latest time in col. ok is false when
// the column holds no times.
func TimeBounds(t *table.Table, col string) (lo, hi time.Time, ok bool, err error) {
	vals, err := t.Column(col)
	if err != nil {
		return lo, hi, false, err
	}
	for _, v := range vals {
		v = table.CoerceTime(v)
		if v.IsNull() {
			continue
		}
		w := v.When()
		if !ok || w.Before(lo) {
			lo = w
		}
		if !ok || w.After(hi) {
			hi = w
		}
		ok = true
	}
	return lo, hi, ok, nil
}

func numbers(t *table.Table, col string) ([]float64, error) {
	vals, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if n := table.CoerceNumber(v); !n.IsNull() {
			out = append(out, n.Num())
		}
	}
	return out, nil
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
