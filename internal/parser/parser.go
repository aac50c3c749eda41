package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dashkit/internal/table"
)

// Options tunes how a file is read into a table.
type Options struct {
	// Columns restricts the table to these columns, in this order. A column
	// that the file does not have is an error. Empty means every column.
	Columns []string
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
}

// Parser reads one record format into a table.
type Parser interface {
	Name() string
	CanParse(filename string) bool
	Parse(r io.Reader, opt Options) (*table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ForName picks the registered parser for a file name.
func ForName(name string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(name) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(name))
}

// Parse reads r with the parser registered for name.
func Parse(name string, r io.Reader, opt Options) (*table.Table, error) {
	p, err := ForName(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, opt)
}

// ParseFile opens path and parses it with the matching parser.
func ParseFile(path string, opt Options) (*table.Table, error) {
	p, err := ForName(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if opt.Delimiter == 0 && strings.HasSuffix(strings.ToLower(path), ".tsv") {
		opt.Delimiter = '\t'
	}
	return p.Parse(f, opt)
}

func init() {
	// Register default parsers
	Register(csvParser{})
	Register(jsonlParser{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported data format")

// ErrMissingColumn is returned when Options.Columns names a column the
// source does not have.
var ErrMissingColumn = errors.New("requested column not found")

// project maps the requested column subset onto the source header.
func project(header []string, want []string) ([]int, []string, error) {
	if len(want) == 0 {
		idx := make([]int, len(header))
		for i := range header {
			idx[i] = i
		}
		return idx, header, nil
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	idx := make([]int, len(want))
	for i, w := range want {
		p, ok := pos[w]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, w)
		}
		idx[i] = p
	}
	return idx, want, nil
}

func schemaOf(names []string, kind table.Kind) (*table.Schema, error) {
	cols := make([]table.Column, len(names))
	for i, n := range names {
		cols[i] = table.Column{Name: n, Kind: kind}
	}
	return table.NewSchema(cols...)
}
