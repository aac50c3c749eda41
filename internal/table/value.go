package table

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind identifies the type carried by a Value or declared by a Column.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
	// KindMixed is only used for columns whose values carry more than one kind.
	KindMixed
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "datetime"
	case KindMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Value is a nullable scalar. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	f    float64
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, f: f} }

// Time returns a time value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) Str() string     { return v.s }
func (v Value) Num() float64    { return v.f }
func (v Value) When() time.Time { return v.t }

// Text renders the value the way it is compared by equality filters and
// displayed in reports. Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindTime:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// String implements fmt.Stringer; null prints as "null".
func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.f == o.f
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Compare orders two values of the same kind. ok is false when the kinds
// differ or either side is null.
func (v Value) Compare(o Value) (cmp int, ok bool) {
	if v.kind != o.kind || v.kind == KindNull {
		return 0, false
	}
	switch v.kind {
	case KindString:
		switch {
		case v.s < o.s:
			return -1, true
		case v.s > o.s:
			return 1, true
		}
		return 0, true
	case KindNumber:
		switch {
		case v.f < o.f:
			return -1, true
		case v.f > o.f:
			return 1, true
		}
		return 0, true
	case KindTime:
		return v.t.Compare(o.t), true
	}
	return 0, false
}

// key returns an identity string that keeps kinds apart, so the string "5"
// and the number 5 never collapse into one group.
func (v Value) key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.s
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindTime:
		return "t:" + v.t.UTC().Format(time.RFC3339Nano)
	default:
		return "null"
	}
}

// Key exposes the grouping identity of a value.
func (v Value) Key() string { return v.key() }

// MarshalJSON encodes null as null, numbers as numbers and times as RFC3339.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindNumber:
		return json.Marshal(v.f)
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339))
	default:
		return []byte("null"), nil
	}
}
