package table

import (
	"fmt"
)

// Column describes one named, typed column.
type Column struct {
	Name string
	Kind Kind
}

// Schema is an ordered set of columns with a name index.
type Schema struct {
	cols  []Column
	index map[string]int
}

// NewSchema builds a schema. Duplicate column names are rejected.
func NewSchema(cols ...Column) (*Schema, error) {
	s := &Schema{cols: make([]Column, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := s.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		s.cols[i] = c
		s.index[c.Name] = i
	}
	return s, nil
}

// Lookup returns the position of a column or a *SchemaError.
func (s *Schema) Lookup(name string) (int, error) {
	if i, ok := s.index[name]; ok {
		return i, nil
	}
	return -1, &SchemaError{Column: name, Available: s.Names()}
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *Schema) Len() int { return len(s.cols) }

// Columns returns a copy of the column list.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

func (s *Schema) Names() []string {
	out := make([]string, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Name
	}
	return out
}

// Table is an immutable ordered sequence of rows sharing one schema.
// Rows are never modified after construction, so derived tables may share
// row storage with their input.
type Table struct {
	schema *Schema
	rows   [][]Value
}

// New builds a table from rows that already match the schema width.
func New(schema *Schema, rows [][]Value) (*Table, error) {
	for i, r := range rows {
		if len(r) != schema.Len() {
			return nil, fmt.Errorf("row %d has %d values, schema has %d columns", i, len(r), schema.Len())
		}
	}
	return &Table{schema: schema, rows: rows}, nil
}

// Empty returns a table with the given schema and no rows.
func Empty(schema *Schema) *Table { return &Table{schema: schema} }

func (t *Table) Schema() *Schema       { return t.schema }
func (t *Table) Len() int              { return len(t.rows) }
func (t *Table) Columns() []Column     { return t.schema.Columns() }
func (t *Table) ColumnNames() []string { return t.schema.Names() }
func (t *Table) Has(col string) bool   { return t.schema.Has(col) }

// Index returns the position of a column or a *SchemaError.
func (t *Table) Index(col string) (int, error) { return t.schema.Lookup(col) }

// KindOf returns the declared kind of a column.
func (t *Table) KindOf(col string) (Kind, error) {
	i, err := t.schema.Lookup(col)
	if err != nil {
		return KindNull, err
	}
	return t.schema.cols[i].Kind, nil
}

// At returns the value at a row and column position. It panics on invalid
// positions like slice indexing does.
func (t *Table) At(row, col int) Value { return t.rows[row][col] }

// Row returns record i of the table.
func (t *Table) Row(i int) (Record, error) {
	if i < 0 || i >= len(t.rows) {
		return Record{}, fmt.Errorf("%w: %d (table has %d rows)", ErrRowOutOfRange, i, len(t.rows))
	}
	return Record{schema: t.schema, values: t.rows[i]}, nil
}

// Column returns every value of one column in row order.
func (t *Table) Column(col string) ([]Value, error) {
	ci, err := t.schema.Lookup(col)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[ci]
	}
	return out, nil
}

// keep returns a new table holding the rows for which fn is true.
func (t *Table) keep(fn func(row []Value) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for _, r := range t.rows {
		if fn(r) {
			rows = append(rows, r)
		}
	}
	return &Table{schema: t.schema, rows: rows}
}

// WithColumn returns a new table with an extra column computed per record.
// An existing column with the same name is replaced.
func (t *Table) WithColumn(col Column, fn func(Record) Value) *Table {
	cols := t.schema.Columns()
	pos, replace := t.schema.index[col.Name]
	if replace {
		cols[pos] = col
	} else {
		pos = len(cols)
		cols = append(cols, col)
	}
	schema, _ := NewSchema(cols...)
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		v := fn(Record{schema: t.schema, values: r})
		nr := make([]Value, len(cols))
		copy(nr, r)
		nr[pos] = v
		rows[i] = nr
	}
	return &Table{schema: schema, rows: rows}
}

// Select projects the table onto the named columns, in the given order.
func Select(t *Table, cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	out := make([]Column, len(cols))
	for i, c := range cols {
		ci, err := t.schema.Lookup(c)
		if err != nil {
			return nil, err
		}
		idx[i] = ci
		out[i] = t.schema.cols[ci]
	}
	schema, err := NewSchema(out...)
	if err != nil {
		return nil, err
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		nr := make([]Value, len(idx))
		for j, ci := range idx {
			nr[j] = r[ci]
		}
		rows[i] = nr
	}
	return &Table{schema: schema, rows: rows}, nil
}

// Head returns the first n rows.
func Head(t *Table, n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{schema: t.schema, rows: t.rows[:n:n]}
}

// Reorder returns a table holding the rows at the given positions.
func Reorder(t *Table, positions []int) *Table {
	rows := make([][]Value, len(positions))
	for i, p := range positions {
		rows[i] = t.rows[p]
	}
	return &Table{schema: t.schema, rows: rows}
}

// Record is a read-only view of one row.
type Record struct {
	schema *Schema
	values []Value
}

// Get returns the value of a column or a *SchemaError.
func (r Record) Get(col string) (Value, error) {
	if r.schema == nil {
		return Value{}, &SchemaError{Column: col}
	}
	i, err := r.schema.Lookup(col)
	if err != nil {
		return Value{}, err
	}
	return r.values[i], nil
}

// Columns lists the record's column names in schema order.
func (r Record) Columns() []string {
	if r.schema == nil {
		return nil
	}
	return r.schema.Names()
}

// Values returns a copy of the row values in schema order.
func (r Record) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// Map returns the record as a column-name keyed map.
func (r Record) Map() map[string]Value {
	out := make(map[string]Value, len(r.values))
	if r.schema == nil {
		return out
	}
	for i, c := range r.schema.cols {
		out[c.Name] = r.values[i]
	}
	return out
}

// IsZero reports whether the record is the zero Record.
func (r Record) IsZero() bool { return r.schema == nil }
