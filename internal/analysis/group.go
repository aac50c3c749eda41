package analysis

import (
	"sort"
	"time"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// Entry is one (key, metric) pair of a grouping.
type Entry struct {
	Key    table.Value `json:"key"`
	Label  string      `json:"label"`
	Metric float64     `json:"metric"`
}

// GroupResult is an ordered list of entries produced by grouping a table.
// The order is part of the result: counts come largest first, periods come
// chronologically.
type GroupResult struct {
	KeyColumn string  `json:"key_column"`
	Metric    string  `json:"metric"`
	Entries   []Entry `json:"entries"`
}

func (g GroupResult) Len() int { return len(g.Entries) }

// Labels returns the entry labels in order.
func (g GroupResult) Labels() []string {
	out := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Label
	}
	return out
}

// Metrics returns the entry metrics in order.
func (g GroupResult) Metrics() []float64 {
	out := make([]float64, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Metric
	}
	return out
}

// Total sums the metrics.
func (g GroupResult) Total() float64 {
	var s float64
	for _, e := range g.Entries {
		s += e.Metric
	}
	return s
}

// Granularity is the period a time column is truncated to.
type Granularity int

const (
	Month Granularity = iota
	Day
	Year
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Year:
		return "year"
	default:
		return "month"
	}
}

// ParseGranularity accepts "day", "month" or "year".
func ParseGranularity(s string) (Granularity, bool) {
	switch s {
	case "day", "d":
		return Day, true
	case "month", "m", "":
		return Month, true
	case "year", "y":
		return Year, true
	}
	return Month, false
}

// Truncate cuts t down to the start of the period its own wall clock falls
// in. The result is stamped UTC so the same period read at different offsets
// compares equal: 2021-01-31T23:00-05:00 is January, not February.
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case Day:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Label formats a truncated period the way reports print it.
func (g Granularity) Label(t time.Time) string {
	switch g {
	case Day:
		return t.Format("2006-01-02")
	case Year:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

// CountByGroup counts rows per distinct non-null value of col. The result is
// ordered by descending count; ties keep the order in which groups were first
// seen.
func CountByGroup(t *table.Table, col string) (GroupResult, error) {
	vals, err := t.Column(col)
	if err != nil {
		return GroupResult{}, err
	}
	res := GroupResult{KeyColumn: col, Metric: "count"}
	pos := map[string]int{}
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		k := v.Key()
		i, ok := pos[k]
		if !ok {
			i = len(res.Entries)
			pos[k] = i
			res.Entries = append(res.Entries, Entry{Key: v, Label: v.Text()})
		}
		res.Entries[i].Metric++
	}
	sortByMetricDesc(res.Entries)
	return res, nil
}

// MedianByGroup computes the median of valueCol per distinct keyCol value.
// When keyCol holds times the key is the calendar month. The result is
// always in ascending key order, never by metric.
func MedianByGroup(t *table.Table, keyCol, valueCol string) (GroupResult, error) {
	kind, err := t.KindOf(keyCol)
	if err != nil {
		return GroupResult{}, err
	}
	if kind == table.KindTime {
		return MedianByPeriod(t, keyCol, valueCol, Month)
	}
	return reduceByGroup(t, keyCol, valueCol, nil)
}

// MedianByPeriod computes the median of valueCol per period of dateCol, in
// chronological order. Rows with a null date or value are skipped.
func MedianByPeriod(t *table.Table, dateCol, valueCol string, g Granularity) (GroupResult, error) {
	return reduceByGroup(t, dateCol, valueCol, &g)
}

func reduceByGroup(t *table.Table, keyCol, valueCol string, g *Granularity) (GroupResult, error) {
	keys, err := t.Column(keyCol)
	if err != nil {
		return GroupResult{}, err
	}
	vals, err := t.Column(valueCol)
	if err != nil {
		return GroupResult{}, err
	}
	res := GroupResult{KeyColumn: keyCol, Metric: "median(" + valueCol + ")"}
	pos := map[string]int{}
	var buckets [][]float64
	for i, k := range keys {
		if g != nil {
			k = table.CoerceTime(k)
			if !k.IsNull() {
				k = table.Time(g.Truncate(k.When()))
			}
		}
		v := table.CoerceNumber(vals[i])
		if k.IsNull() || v.IsNull() {
			continue
		}
		id := k.Key()
		p, ok := pos[id]
		if !ok {
			p = len(res.Entries)
			pos[id] = p
			label := k.Text()
			if g != nil {
				label = g.Label(k.When())
			}
			res.Entries = append(res.Entries, Entry{Key: k, Label: label})
			buckets = append(buckets, nil)
		}
		buckets[p] = append(buckets[p], v.Num())
	}
	for i := range res.Entries {
		m, _ := medianMAD(buckets[i])
		res.Entries[i].Metric = m
	}
	sortEntriesByKey(res.Entries)
	return res, nil
}

// CountOverTime counts rows per period of col. Values that do not parse as
// times are dropped. Periods come in chronological order.
func CountOverTime(t *table.Table, col string, g Granularity) (GroupResult, error) {
	vals, err := t.Column(col)
	if err != nil {
		return GroupResult{}, err
	}
	res := GroupResult{KeyColumn: col, Metric: "count"}
	pos := map[int64]int{}
	for _, v := range vals {
		v = table.CoerceTime(v)
		if v.IsNull() {
			continue
		}
		p := g.Truncate(v.When())
		id := p.Unix()
		i, ok := pos[id]
		if !ok {
			i = len(res.Entries)
			pos[id] = i
			res.Entries = append(res.Entries, Entry{Key: table.Time(p), Label: g.Label(p)})
		}
		res.Entries[i].Metric++
	}
	sortEntriesByKey(res.Entries)
	return res, nil
}

// TopN keeps the n entries with the largest metrics. Ties keep their input
// order, so TopN(TopN(g, n), n) equals TopN(g, n). n <= 0 yields no entries.
func TopN(g GroupResult, n int) GroupResult {
	out := GroupResult{KeyColumn: g.KeyColumn, Metric: g.Metric}
	if n <= 0 || len(g.Entries) == 0 {
		return out
	}
	entries := make([]Entry, len(g.Entries))
	copy(entries, g.Entries)
	sortByMetricDesc(entries)
	if n < len(entries) {
		entries = entries[:n]
	}
	out.Entries = entries
	return out
}

// SortByKey returns g ordered by ascending key.
func SortByKey(g GroupResult) GroupResult {
	entries := make([]Entry, len(g.Entries))
	copy(entries, g.Entries)
	sortEntriesByKey(entries)
	return GroupResult{KeyColumn: g.KeyColumn, Metric: g.Metric, Entries: entries}
}

// Reverse returns g with its entries in reverse order.
func Reverse(g GroupResult) GroupResult {
	n := len(g.Entries)
	entries := make([]Entry, n)
	for i, e := range g.Entries {
		entries[n-1-i] = e
	}
	return GroupResult{KeyColumn: g.KeyColumn, Metric: g.Metric, Entries: entries}
}

func sortByMetricDesc(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Metric > entries[j].Metric
	})
}

// sortEntriesByKey orders by key. Keys of different kinds fall back to their
// label text.
func sortEntriesByKey(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if c, ok := entries[i].Key.Compare(entries[j].Key); ok {
			return c < 0
		}
		return entries[i].Label < entries[j].Label
	})
}
