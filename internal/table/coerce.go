package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NoneLabel is what a missing categorical value becomes. It is a present
// value, distinct from null.
const NoneLabel = "None"

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// ParseTime tries the known layouts in order.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NumberFormat describes locale separators for numeric text. The zero value
// accepts plain Go float syntax only.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// ParseNumber parses numeric text. With a zero NumberFormat only plain float
// syntax is accepted, so "1,000" is not a number.
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	if nf.Thousands != 0 && nf.Thousands != nf.Decimal {
		raw = strings.ReplaceAll(raw, string(nf.Thousands), "")
	}
	if nf.Decimal != 0 && nf.Decimal != '.' {
		raw = strings.ReplaceAll(raw, string(nf.Decimal), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceNumber converts a value to a number, nulling anything non-numeric.
func CoerceNumber(v Value) Value {
	switch v.kind {
	case KindNumber:
		return v
	case KindString:
		if f, ok := ParseNumber(v.s, NumberFormat{}); ok {
			return Number(f)
		}
	}
	return Null()
}

// CoerceTime converts a value to a time, nulling anything unparseable.
// Numbers are Unix epoch values: milliseconds when |v| >= 1e11, else seconds.
func CoerceTime(v Value) Value {
	switch v.kind {
	case KindTime:
		return v
	case KindNumber:
		f := v.f
		if math.Abs(f) >= 1e11 {
			return Time(time.UnixMilli(int64(f)).UTC())
		}
		sec, frac := math.Modf(f)
		return Time(time.Unix(int64(sec), int64(frac*1e9)).UTC())
	case KindString:
		if t, ok := ParseTime(v.s); ok {
			return Time(t)
		}
	}
	return Null()
}

// CoerceCategory converts a value to a trimmed string. Null becomes NoneLabel.
func CoerceCategory(v Value) Value {
	if v.kind == KindNull {
		return String(NoneLabel)
	}
	return String(strings.TrimSpace(v.Text()))
}

// Coerce converts a value to the given column kind. KindString keeps nulls
// as null; KindMixed and KindNull return the value unchanged.
func Coerce(v Value, k Kind) Value {
	switch k {
	case KindNumber:
		return CoerceNumber(v)
	case KindTime:
		return CoerceTime(v)
	case KindString:
		if v.kind == KindNull {
			return v
		}
		return String(v.Text())
	default:
		return v
	}
}

// AgeBuckets are the right-open age bins and their labels.
var AgeBuckets = []struct {
	Low   float64
	Label string
}{
	{0, "Under 20"},
	{20, "20-30"},
	{30, "30-40"},
	{40, "40-50"},
	{50, "50-60"},
	{60, "60-70"},
	{70, "Above 70"},
}

// AgeBucket maps an age to its bin label. Null and negative ages map to null.
func AgeBucket(v Value) Value {
	v = CoerceNumber(v)
	if v.IsNull() || v.f < 0 {
		return Null()
	}
	label := AgeBuckets[0].Label
	for _, b := range AgeBuckets {
		if v.f >= b.Low {
			label = b.Label
		}
	}
	return String(label)
}

// FromAny converts a decoded literal into a Value. It accepts Value, string,
// float64, int kinds, time.Time and nil.
func FromAny(x any) (Value, bool) {
	switch t := x.(type) {
	case nil:
		return Null(), true
	case Value:
		return t, true
	case string:
		return String(t), true
	case float64:
		return Number(t), true
	case float32:
		return Number(float64(t)), true
	case int:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case time.Time:
		return Time(t), true
	}
	return Null(), false
}
