package table

import "fmt"

// AllValues is the selector value meaning "no filter".
const AllValues = "All"

// FilterEqual keeps rows whose value in col equals value exactly. The
// AllValues sentinel returns t unchanged.
func FilterEqual(t *Table, col, value string) (*Table, error) {
	ci, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	if value == AllValues {
		return t, nil
	}
	return t.keep(func(row []Value) bool {
		return !row[ci].IsNull() && row[ci].Text() == value
	}), nil
}

// FilterNotEqual drops rows whose value in col equals value. Nulls are kept.
func FilterNotEqual(t *Table, col, value string) (*Table, error) {
	ci, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	return t.keep(func(row []Value) bool {
		return row[ci].IsNull() || row[ci].Text() != value
	}), nil
}

// FilterRange keeps rows with low <= v <= high. Rows with null in col are
// excluded. Bounds are coerced to the column kind first, so date columns
// accept time.Time or date strings.
func FilterRange(t *Table, col string, low, high any) (*Table, error) {
	ci, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	kind := t.schema.cols[ci].Kind
	lo, err := rangeBound(low, kind)
	if err != nil {
		return nil, fmt.Errorf("filter %s: low bound: %w", col, err)
	}
	hi, err := rangeBound(high, kind)
	if err != nil {
		return nil, fmt.Errorf("filter %s: high bound: %w", col, err)
	}
	return t.keep(func(row []Value) bool {
		v := row[ci]
		if kind == KindMixed {
			v = Coerce(v, lo.kind)
		}
		c1, ok1 := lo.Compare(v)
		c2, ok2 := v.Compare(hi)
		return ok1 && ok2 && c1 <= 0 && c2 <= 0
	}), nil
}

// FilterGreater keeps rows whose numeric value in col is strictly greater
// than threshold.
func FilterGreater(t *Table, col string, threshold float64) (*Table, error) {
	ci, err := t.Index(col)
	if err != nil {
		return nil, err
	}
	return t.keep(func(row []Value) bool {
		v := CoerceNumber(row[ci])
		return !v.IsNull() && v.f > threshold
	}), nil
}

// DropNulls removes rows that are null in any of the listed columns.
func DropNulls(t *Table, cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		ci, err := t.Index(c)
		if err != nil {
			return nil, err
		}
		idx[i] = ci
	}
	return t.keep(func(row []Value) bool {
		for _, ci := range idx {
			if row[ci].IsNull() {
				return false
			}
		}
		return true
	}), nil
}

func rangeBound(x any, kind Kind) (Value, error) {
	v, ok := FromAny(x)
	if !ok {
		return Value{}, fmt.Errorf("unsupported bound type %T", x)
	}
	if v.IsNull() {
		return Value{}, fmt.Errorf("bound is null")
	}
	target := kind
	if target == KindMixed || target == KindNull {
		target = v.kind
	}
	c := Coerce(v, target)
	if c.IsNull() {
		return Value{}, fmt.Errorf("cannot use %q as %s", v.Text(), target)
	}
	return c, nil
}
