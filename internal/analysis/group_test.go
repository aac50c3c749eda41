package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dashkit/internal/table"
)

func build(t *testing.T, cols []table.Column, rows ...[]table.Value) *table.Table {
	t.Helper()
	s, err := table.NewSchema(cols...)
	require.NoError(t, err)
	tb, err := table.New(s, rows)
	require.NoError(t, err)
	return tb
}

func strCol(t *testing.T, name string, vals ...any) *table.Table {
	t.Helper()
	rows := make([][]table.Value, len(vals))
	for i, v := range vals {
		if v == nil {
			rows[i] = []table.Value{table.Null()}
			continue
		}
		rows[i] = []table.Value{table.String(v.(string))}
	}
	return build(t, []table.Column{{Name: name, Kind: table.KindString}}, rows...)
}

func date(s string) table.Value {
	tm, ok := table.ParseTime(s)
	if !ok {
		panic("bad date " + s)
	}
	return table.Time(tm)
}

func pairs(g GroupResult) [][2]any {
	out := make([][2]any, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = [2]any{e.Label, e.Metric}
	}
	return out
}

func TestCountByGroupCountsNoneLiteral(t *testing.T) {
	tb := strCol(t, "store", "a", "b", "a", "None", "a")
	g, err := CountByGroup(tb, "store")
	require.NoError(t, err)
	assert.Equal(t, [][2]any{{"a", 3.0}, {"b", 1.0}, {"None", 1.0}}, pairs(g))
}

func TestCountByGroupIsPartition(t *testing.T) {
	tb := strCol(t, "c", "x", nil, "y", "z", "x", nil, "y", "x")
	g, err := CountByGroup(tb, "c")
	require.NoError(t, err)
	assert.Equal(t, 6.0, g.Total(), "sum of counts equals non-null rows")
	assert.ElementsMatch(t, []string{"x", "y", "z"}, g.Labels())
	// ties keep first-seen order
	assert.Equal(t, [][2]any{{"x", 3.0}, {"y", 2.0}, {"z", 1.0}}, pairs(g))
}

func TestCountByGroupEmptyAndUnknown(t *testing.T) {
	tb := strCol(t, "c")
	g, err := CountByGroup(tb, "c")
	require.NoError(t, err)
	assert.Empty(t, g.Entries)

	_, err = CountByGroup(tb, "missing")
	var se *table.SchemaError
	assert.True(t, errors.As(err, &se))
}

func TestMedianByGroupMonthlyScenario(t *testing.T) {
	tb := build(t,
		[]table.Column{{Name: "price", Kind: table.KindNumber}, {Name: "dateSoldString", Kind: table.KindTime}},
		[]table.Value{table.Number(100), date("2021-01-05")},
		[]table.Value{table.Number(300), date("2021-01-20")},
		[]table.Value{table.Number(200), date("2021-02-01")},
	)
	g, err := MedianByGroup(tb, "dateSoldString", "price")
	require.NoError(t, err)
	assert.Equal(t, [][2]any{{"2021-01", 200.0}, {"2021-02", 200.0}}, pairs(g))
}

func TestMedianByPeriodIsChronological(t *testing.T) {
	// the largest median sits in the earliest period
	tb := build(t,
		[]table.Column{{Name: "price", Kind: table.KindNumber}, {Name: "sold", Kind: table.KindTime}},
		[]table.Value{table.Number(50), date("2021-03-02")},
		[]table.Value{table.Number(900), date("2021-01-09")},
		[]table.Value{table.Number(10), date("2021-02-11")},
		[]table.Value{table.Null(), date("2021-04-01")},
		[]table.Value{table.Number(70), table.Null()},
	)
	g, err := MedianByPeriod(tb, "sold", "price", Month)
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-01", "2021-02", "2021-03"}, g.Labels())
	assert.Equal(t, []float64{900, 10, 50}, g.Metrics())
}

func TestTopNProperties(t *testing.T) {
	tb := strCol(t, "c", "a", "b", "b", "c", "c", "d", "e", "e")
	g, err := CountByGroup(tb, "c")
	require.NoError(t, err)

	top := TopN(g, 3)
	require.Len(t, top.Entries, 3)
	assert.Equal(t, []string{"b", "c", "e"}, top.Labels(), "ties broken by first-seen order")
	assert.Equal(t, top, TopN(top, 3), "idempotent")

	assert.Len(t, TopN(g, 50).Entries, g.Len())
	assert.Empty(t, TopN(g, 0).Entries)
	assert.Empty(t, TopN(GroupResult{}, 3).Entries)
}

func TestCountOverTime(t *testing.T) {
	tb := build(t,
		[]table.Column{{Name: "timestamp", Kind: table.KindMixed}},
		[]table.Value{table.Number(1612137600000)}, // 2021-02-01 in ms
		[]table.Value{table.String("2021-01-15")},
		[]table.Value{table.String("garbage")},
		[]table.Value{table.String("2021-02-20")},
		[]table.Value{table.Null()},
	)
	g, err := CountOverTime(tb, "timestamp", Month)
	require.NoError(t, err)
	assert.Equal(t, [][2]any{{"2021-01", 1.0}, {"2021-02", 2.0}}, pairs(g))

	g, err = CountOverTime(tb, "timestamp", Year)
	require.NoError(t, err)
	assert.Equal(t, [][2]any{{"2021", 3.0}}, pairs(g))
}

func TestPeriodsFollowTheValueOffset(t *testing.T) {
	tb := build(t,
		[]table.Column{{Name: "price", Kind: table.KindNumber}, {Name: "sold", Kind: table.KindTime}},
		[]table.Value{table.Number(100), date("2021-01-31T23:00:00-05:00")},
		[]table.Value{table.Number(300), date("2021-01-10T12:00:00Z")},
		[]table.Value{table.Number(500), date("2021-02-01T00:30:00+02:00")},
	)
	g, err := CountOverTime(tb, "sold", Month)
	require.NoError(t, err)
	assert.Equal(t, [][2]any{{"2021-01", 2.0}, {"2021-02", 1.0}}, pairs(g))

	g, err = MedianByPeriod(tb, "sold", "price", Month)
	require.NoError(t, err)
	assert.Equal(t, [][2]any{{"2021-01", 200.0}, {"2021-02", 500.0}}, pairs(g))

	g, err = CountOverTime(tb, "sold", Day)
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-01-10", "2021-01-31", "2021-02-01"}, g.Labels())
}

func TestSortByKeyNumbers(t *testing.T) {
	tb := build(t,
		[]table.Column{{Name: "rating", Kind: table.KindNumber}},
		[]table.Value{table.Number(5)}, []table.Value{table.Number(1)},
		[]table.Value{table.Number(5)}, []table.Value{table.Number(3)},
	)
	g, err := CountByGroup(tb, "rating")
	require.NoError(t, err)
	sorted := SortByKey(g)
	assert.Equal(t, []string{"1", "3", "5"}, sorted.Labels())
	assert.Equal(t, []string{"5", "1", "3"}, g.Labels(), "input untouched")
	assert.Equal(t, []string{"5", "3", "1"}, Reverse(sorted).Labels())
}

func TestGranularity(t *testing.T) {
	ts := time.Date(2022, 7, 19, 13, 5, 0, 0, time.UTC)
	assert.Equal(t, "2022-07-19", Day.Label(Day.Truncate(ts)))
	assert.Equal(t, "2022-07", Month.Label(Month.Truncate(ts)))
	assert.Equal(t, "2022", Year.Label(Year.Truncate(ts)))
	g, ok := ParseGranularity("year")
	assert.True(t, ok)
	assert.Equal(t, Year, g)
	_, ok = ParseGranularity("fortnight")
	assert.False(t, ok)
}
