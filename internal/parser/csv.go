package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/KaramelBytes/dashkit/internal/table"
)

type csvParser struct{}

func (csvParser) Name() string { return "csv" }

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Parse reads a CSV with a header row. Every cell is a string; empty cells
// are null. Short rows are padded with nulls.
func (csvParser) Parse(in io.Reader, opt Options) (*table.Table, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	r.TrimLeadingSpace = !unicode.IsSpace(r.Comma)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	idx, names, err := project(header, opt.Columns)
	if err != nil {
		return nil, err
	}
	schema, err := schemaOf(names, table.KindString)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]table.Value
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		row := make([]table.Value, len(idx))
		for j, src := range idx {
			if src >= len(rec) {
				continue
			}
			if v := strings.TrimSpace(rec[src]); v != "" {
				row[j] = table.String(v)
			}
		}
		rows = append(rows, row)
	}
	return table.New(schema, rows)
}
