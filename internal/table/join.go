package table

// JoinSuffix is appended to secondary column names that collide with a
// primary column.
const JoinSuffix = "_right"

// LeftJoin attaches the columns of secondary to every row of primary by
// matching on. Every primary row appears exactly once and in order. When
// secondary holds several rows with the same key the first one wins. Rows
// without a match, or with a null key, get nulls in the joined columns.
func LeftJoin(primary, secondary *Table, on string) (*Table, error) {
	pk, err := primary.Index(on)
	if err != nil {
		return nil, err
	}
	sk, err := secondary.Index(on)
	if err != nil {
		return nil, err
	}

	cols := primary.schema.Columns()
	var extra []int
	for i, c := range secondary.schema.cols {
		if i == sk {
			continue
		}
		name := c.Name
		for primary.schema.Has(name) || containsColumn(cols, name) {
			name += JoinSuffix
		}
		cols = append(cols, Column{Name: name, Kind: c.Kind})
		extra = append(extra, i)
	}
	schema, err := NewSchema(cols...)
	if err != nil {
		return nil, err
	}

	first := make(map[string][]Value, secondary.Len())
	for _, r := range secondary.rows {
		if r[sk].IsNull() {
			continue
		}
		k := r[sk].Text()
		if _, seen := first[k]; !seen {
			first[k] = r
		}
	}

	width := primary.schema.Len()
	rows := make([][]Value, len(primary.rows))
	for i, r := range primary.rows {
		nr := make([]Value, len(cols))
		copy(nr, r)
		if !r[pk].IsNull() {
			if match, ok := first[r[pk].Text()]; ok {
				for j, si := range extra {
					nr[width+j] = match[si]
				}
			}
		}
		rows[i] = nr
	}
	return &Table{schema: schema, rows: rows}, nil
}

func containsColumn(cols []Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
