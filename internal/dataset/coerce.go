package dataset

import (
	"github.com/KaramelBytes/dashkit/internal/table"
)

// applySpec types the raw columns of t. Columns named by spec but
// missing from t are skipped.
func applySpec(t *table.Table, spec Spec, nf table.NumberFormat) *table.Table {
	for _, c := range spec.Times {
		t = retype(t, c, table.KindTime, table.CoerceTime)
	}
	for _, c := range spec.Numbers {
		t = retype(t, c, table.KindNumber, table.CoerceNumber)
	}
	for _, c := range spec.Categories {
		t = retype(t, c, table.KindString, table.CoerceCategory)
	}
	if spec.InferTypes {
		t = inferTypes(t, nf)
	}
	if spec.AgeBucket {
		t = withAgeBucket(t)
	}
	return t
}

func retype(t *table.Table, col string, kind table.Kind, fn func(table.Value) table.Value) *table.Table {
	if !t.Has(col) {
		return t
	}
	return t.WithColumn(table.Column{Name: col, Kind: kind}, func(r table.Record) table.Value {
		v, _ := r.Get(col)
		return fn(v)
	})
}

// withAgeBucket adds age_bucket when age exists and is not entirely null.
func withAgeBucket(t *table.Table) *table.Table {
	ages, err := t.Column(ColAge)
	if err != nil {
		return t
	}
	present := false
	for _, a := range ages {
		if !a.IsNull() {
			present = true
			break
		}
	}
	if !present {
		return t
	}
	return t.WithColumn(table.Column{Name: ColAgeBucket, Kind: table.KindString}, func(r table.Record) table.Value {
		v, _ := r.Get(ColAge)
		return table.AgeBucket(v)
	})
}

// inferTypes types each untyped column by majority vote of its non-null
// values: numeric wins ties, then datetime, then text.
func inferTypes(t *table.Table, nf table.NumberFormat) *table.Table {
	for _, c := range t.Columns() {
		if c.Kind == table.KindNumber || c.Kind == table.KindTime {
			continue
		}
		vals, _ := t.Column(c.Name)
		var numCnt, dtCnt, txtCnt int
		for _, v := range vals {
			switch v.Kind() {
			case table.KindNull:
			case table.KindNumber:
				numCnt++
			case table.KindTime:
				dtCnt++
			default:
				s := v.Text()
				if _, ok := table.ParseNumber(s, nf); ok {
					numCnt++
				} else if _, ok := table.ParseTime(s); ok {
					dtCnt++
				} else {
					txtCnt++
				}
			}
		}
		switch {
		case numCnt > 0 && numCnt >= dtCnt && numCnt >= txtCnt:
			t = retype(t, c.Name, table.KindNumber, func(v table.Value) table.Value {
				if v.Kind() == table.KindString {
					if f, ok := table.ParseNumber(v.Str(), nf); ok {
						return table.Number(f)
					}
					return table.Null()
				}
				return table.CoerceNumber(v)
			})
		case dtCnt > 0 && dtCnt >= txtCnt:
			t = retype(t, c.Name, table.KindTime, table.CoerceTime)
		default:
			t = retype(t, c.Name, table.KindString, func(v table.Value) table.Value {
				if v.IsNull() {
					return v
				}
				return table.String(v.Text())
			})
		}
	}
	return t
}
