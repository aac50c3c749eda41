package table

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeLayouts(t *testing.T) {
	cases := map[string]string{
		"2021-01-05":           "2021-01-05T00:00:00Z",
		"2021-01-05 13:04:05":  "2021-01-05T13:04:05Z",
		"2021-01-05T13:04:05Z": "2021-01-05T13:04:05Z",
		"01/05/2021":           "2021-01-05T00:00:00Z",
		"1/5/2021 7:30":        "2021-01-05T07:30:00Z",
		"2021/01/05":           "2021-01-05T00:00:00Z",
	}
	for in, want := range cases {
		got, ok := ParseTime(in)
		require.Truef(t, ok, "parse %q", in)
		assert.Equal(t, want, got.UTC().Format(time.RFC3339), in)
	}
	_, ok := ParseTime("last tuesday")
	assert.False(t, ok)
}

func TestParseNumberLocale(t *testing.T) {
	f, ok := ParseNumber("1.000,5", NumberFormat{Decimal: ',', Thousands: '.'})
	require.True(t, ok)
	assert.InDelta(t, 1000.5, f, 1e-9)

	_, ok = ParseNumber("1,000", NumberFormat{})
	assert.False(t, ok)
	_, ok = ParseNumber("NaN", NumberFormat{})
	assert.False(t, ok)
	f, ok = ParseNumber(" 42 ", NumberFormat{})
	require.True(t, ok)
	assert.Equal(t, 42.0, f)
}

func TestCoerceNullsMalformedValues(t *testing.T) {
	assert.True(t, CoerceNumber(String("n/a")).IsNull())
	assert.Equal(t, 4.5, CoerceNumber(String("4.5")).Num())
	assert.True(t, CoerceTime(String("soon")).IsNull())

	ms := CoerceTime(Number(1609459200000))
	require.Equal(t, KindTime, ms.Kind())
	assert.Equal(t, "2021-01-01", ms.Text())
	sec := CoerceTime(Number(1609459200))
	assert.True(t, ms.Equal(sec))
}

func TestCoerceCategoryNoneIsPresent(t *testing.T) {
	assert.Equal(t, String("None"), CoerceCategory(Null()))
	assert.Equal(t, String("Amazon"), CoerceCategory(String("  Amazon ")))
	assert.False(t, CoerceCategory(String("None")).IsNull())
}

func TestAgeBucketEdges(t *testing.T) {
	cases := []struct {
		in   Value
		want Value
	}{
		{Number(0), String("Under 20")},
		{Number(19.9), String("Under 20")},
		{Number(20), String("20-30")},
		{Number(69), String("60-70")},
		{Number(70), String("Above 70")},
		{String("44"), String("40-50")},
		{Number(-1), Null()},
		{Null(), Null()},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AgeBucket(c.in), c.in.String())
	}
}

func TestValueKeysKeepKindsApart(t *testing.T) {
	assert.NotEqual(t, String("5").Key(), Number(5).Key())
	_, ok := String("5").Compare(Number(5))
	assert.False(t, ok)
	assert.False(t, Null().Equal(String("")))
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Null(), String("x"), Number(2.5), Time(day("2021-02-01"))})
	require.NoError(t, err)
	assert.JSONEq(t, `[null,"x",2.5,"2021-02-01T00:00:00Z"]`, string(b))
}
